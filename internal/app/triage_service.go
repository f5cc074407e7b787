package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"triage-service/internal/domain"
	"triage-service/internal/metrics"
	"triage-service/internal/triage"
)

// CatalogRepository resolves compiled catalogs (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context, specialty string) (*domain.Catalog, error)
	ListSpecialties(ctx context.Context) ([]domain.Specialty, error)
}

// SessionRepository abstracts how triage sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// SessionView is a session plus the question it is waiting on.
type SessionView struct {
	Session  *Session                   `json:"session"`
	Question *domain.QuestionDefinition `json:"question,omitempty"`
}

// TriageService contains the triage use cases.
type TriageService struct {
	catalogs CatalogRepository
	sessions SessionRepository
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// Option customizes a TriageService.
type Option func(*TriageService)

// WithClock is used by tests for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *TriageService) { s.now = now }
}

// WithIDGenerator replaces the uuid generator for session and consultation ids.
func WithIDGenerator(gen func() string) Option {
	return func(s *TriageService) { s.newID = gen }
}

func NewTriageService(catalogs CatalogRepository, sessions SessionRepository, logger *zap.Logger, opts ...Option) *TriageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &TriageService{
		catalogs: catalogs,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Specialties lists the available catalogs.
func (s *TriageService) Specialties(ctx context.Context) ([]domain.Specialty, error) {
	return s.catalogs.ListSpecialties(ctx)
}

// InitialQuestions returns the entry questions of a specialty.
func (s *TriageService) InitialQuestions(ctx context.Context, specialty string) ([]domain.QuestionDefinition, error) {
	cat, err := s.catalogs.GetCatalog(ctx, specialty)
	if err != nil {
		return nil, err
	}
	return triage.InitialQuestions(cat), nil
}

// NextQuestions returns every eligible unanswered question for a client-held answer list.
func (s *TriageService) NextQuestions(ctx context.Context, specialty string, answers []domain.AnsweredQuestion) ([]domain.QuestionDefinition, error) {
	cat, err := s.catalogs.GetCatalog(ctx, specialty)
	if err != nil {
		return nil, err
	}
	return triage.NextQuestions(cat, answers), nil
}

// CheckEarlyStop evaluates a single answer before it joins the answer list.
func (s *TriageService) CheckEarlyStop(ctx context.Context, specialty, questionID string, response domain.Response) (domain.EarlyStop, error) {
	cat, err := s.catalogs.GetCatalog(ctx, specialty)
	if err != nil {
		return domain.EarlyStop{}, err
	}
	q, ok := cat.Question(questionID)
	if !ok {
		return domain.EarlyStop{}, fmt.Errorf("%w: %s", domain.ErrQuestionNotFound, questionID)
	}
	stop := triage.CheckEarlyStop(q, string(response))
	if stop.Stops {
		metrics.EarlyStops.WithLabelValues(specialty).Inc()
	}
	return stop, nil
}

// Submit classifies a client-held answer list. With strict set, visible
// questions left unanswered fail with domain.ErrIncomplete.
func (s *TriageService) Submit(ctx context.Context, specialty string, answers []domain.AnsweredQuestion, strict bool) (domain.TriageResult, error) {
	cat, err := s.catalogs.GetCatalog(ctx, specialty)
	if err != nil {
		return domain.TriageResult{}, err
	}
	if strict {
		if missing, ok := triage.MissingAnswer(cat, answers); ok {
			return domain.TriageResult{}, fmt.Errorf("%w: missing answer for %s", domain.ErrIncomplete, missing.ID)
		}
	}
	result := triage.Result(cat, answers)
	result.ConsultationID = s.newID()
	s.recordResult(result)
	return result, nil
}

// StartSession opens a server-held session for a specialty.
func (s *TriageService) StartSession(ctx context.Context, specialty string) (SessionView, error) {
	cat, err := s.catalogs.GetCatalog(ctx, specialty)
	if err != nil {
		return SessionView{}, err
	}
	session := NewSession(s.newID(), cat, s.now())
	if session.Completed() {
		session.Result.ConsultationID = s.newID()
		s.recordResult(*session.Result)
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return SessionView{}, err
	}
	metrics.SessionsStarted.WithLabelValues(specialty).Inc()
	s.logger.Info("triage session started",
		zap.String("session", session.ID),
		zap.String("specialty", specialty),
		zap.String("state", string(session.State)),
	)
	return view(cat, session), nil
}

// GetSession returns the current state of a session.
func (s *TriageService) GetSession(ctx context.Context, id string) (SessionView, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return SessionView{}, err
	}
	cat, err := s.catalogs.GetCatalog(ctx, session.Specialty)
	if err != nil {
		return SessionView{}, err
	}
	return view(cat, session), nil
}

// Answer records the answer to the session's current question. Answers to
// any other question are rejected with domain.ErrInvalidTransition.
func (s *TriageService) Answer(ctx context.Context, id, questionID string, response domain.Response) (SessionView, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return SessionView{}, err
	}
	cat, err := s.catalogs.GetCatalog(ctx, session.Specialty)
	if err != nil {
		return SessionView{}, err
	}

	stopped, err := session.apply(cat, questionID, response, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			metrics.RejectedAnswers.WithLabelValues(session.Specialty).Inc()
			s.logger.Warn("answer rejected",
				zap.String("session", id),
				zap.String("question", questionID),
				zap.Error(err),
			)
		}
		return SessionView{}, err
	}
	if stopped {
		metrics.EarlyStops.WithLabelValues(session.Specialty).Inc()
	}
	if session.Completed() {
		session.Result.ConsultationID = s.newID()
		s.recordResult(*session.Result)
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return SessionView{}, err
	}
	return view(cat, session), nil
}

// Abandon discards a session.
func (s *TriageService) Abandon(ctx context.Context, id string) error {
	return s.sessions.Delete(ctx, id)
}

func (s *TriageService) recordResult(result domain.TriageResult) {
	metrics.TriagesCompleted.WithLabelValues(result.Specialty, string(result.Level)).Inc()
	s.logger.Info("triage completed",
		zap.String("consultation", result.ConsultationID),
		zap.String("specialty", result.Specialty),
		zap.String("level", string(result.Level)),
		zap.String("trigger", result.TriggeringQuestionID),
	)
}

func view(cat *domain.Catalog, session *Session) SessionView {
	v := SessionView{Session: session}
	if session.Current != "" {
		if q, ok := cat.Question(session.Current); ok {
			v.Question = &q
		}
	}
	return v
}
