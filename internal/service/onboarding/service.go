// Package onboarding runs the scripted intake interview: name, age, gender,
// then a short wellbeing questionnaire, ending in a persisted profile.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/otsyhq/otsy-backend/internal/model/identity"
	"github.com/otsyhq/otsy-backend/internal/model/wellness"
	"github.com/otsyhq/otsy-backend/internal/store"
)

var (
	ErrFlowNotFound = errors.New("onboarding flow not found")
	ErrFlowFinished = errors.New("onboarding flow already finished")
	ErrEmptyAnswer  = errors.New("answer is required")
	ErrNotSkippable = errors.New("this question is not optional")
)

// Phase names the interview steps in order.
type Phase string

const (
	PhaseName     Phase = "name"
	PhaseAge      Phase = "age"
	PhaseGender   Phase = "gender"
	PhaseQuestion Phase = "question"
	PhaseDone     Phase = "done"
)

type question struct {
	text     string
	optional bool
}

// The first three questions are compulsory, the last two can be skipped.
var intakeQuestions = []question{
	{text: "How have you been sleeping lately?"},
	{text: "Have you felt anxious without a clear reason?"},
	{text: "Do you have a support system to talk to?"},
	{text: "On a scale of 1-10, rate your daily stress?", optional: true},
	{text: "Is there a specific event that triggered this?", optional: true},
}

// State is what the client renders after each step.
type State struct {
	FlowID   string `json:"flowId"`
	Phase    Phase  `json:"phase"`
	Prompt   string `json:"prompt"`
	Optional bool   `json:"optional,omitempty"`
	Done     bool   `json:"done,omitempty"`
}

type flow struct {
	id          string
	owner       identity.Identity
	phase       Phase
	questionIdx int
	profile     wellness.Profile
}

// Service holds in-flight interviews in memory and persists the finished
// profile to the owner's sink.
type Service struct {
	sinks  store.Dual
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	flows map[string]*flow
}

func NewService(sinks store.Dual, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sinks:  sinks,
		logger: logger,
		now:    time.Now,
		flows:  make(map[string]*flow),
	}
}

// Start opens a new interview for the identity.
func (s *Service) Start(_ context.Context, id identity.Identity) State {
	f := &flow{
		id:    uuid.NewString(),
		owner: id,
		phase: PhaseName,
	}

	s.mu.Lock()
	s.flows[f.id] = f
	s.mu.Unlock()

	return State{
		FlowID: f.id,
		Phase:  PhaseName,
		Prompt: "Hello! I am Otsy. I'm here to listen. First, what is your name?",
	}
}

// Advance feeds one answer into the flow and returns the next step. Empty
// answers are rejected without moving the flow.
func (s *Service) Advance(ctx context.Context, flowID, answer string) (State, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return State{}, ErrEmptyAnswer
	}

	s.mu.Lock()
	f, ok := s.flows[flowID]
	s.mu.Unlock()
	if !ok {
		return State{}, ErrFlowNotFound
	}

	switch f.phase {
	case PhaseName:
		f.profile.Name = answer
		f.phase = PhaseAge
		return s.state(f, fmt.Sprintf("Hi %s, it's nice to meet you. May I ask how old you are?", answer)), nil

	case PhaseAge:
		f.profile.Age = answer
		f.phase = PhaseGender
		return s.state(f, "Thank you. And how do you identify?"), nil

	case PhaseGender:
		f.profile.Gender = answer
		f.phase = PhaseQuestion
		f.questionIdx = 0
		return s.state(f, intakeQuestions[0].text), nil

	case PhaseQuestion:
		f.profile.Responses = append(f.profile.Responses, wellness.IntakeResponse{
			Question: intakeQuestions[f.questionIdx].text,
			Answer:   answer,
		})
		return s.nextQuestion(ctx, f)

	default:
		return State{}, ErrFlowFinished
	}
}

// Skip moves past the current question without recording an answer. Only
// the optional questions allow it.
func (s *Service) Skip(ctx context.Context, flowID string) (State, error) {
	s.mu.Lock()
	f, ok := s.flows[flowID]
	s.mu.Unlock()
	if !ok {
		return State{}, ErrFlowNotFound
	}
	if f.phase != PhaseQuestion || !intakeQuestions[f.questionIdx].optional {
		return State{}, ErrNotSkippable
	}
	return s.nextQuestion(ctx, f)
}

func (s *Service) nextQuestion(ctx context.Context, f *flow) (State, error) {
	f.questionIdx++
	if f.questionIdx < len(intakeQuestions) {
		return s.state(f, intakeQuestions[f.questionIdx].text), nil
	}
	return s.finish(ctx, f)
}

func (s *Service) finish(ctx context.Context, f *flow) (State, error) {
	f.phase = PhaseDone
	f.profile.CreatedAt = s.now().UTC()

	if err := s.sinks.For(f.owner).SaveProfile(ctx, f.owner.ID(), f.profile); err != nil {
		return State{}, fmt.Errorf("save intake profile: %w", err)
	}

	s.mu.Lock()
	delete(s.flows, f.id)
	s.mu.Unlock()

	s.logger.Info("onboarding finished",
		zap.String("identity", string(f.owner.Kind())),
		zap.Int("responses", len(f.profile.Responses)))

	return State{
		FlowID: f.id,
		Phase:  PhaseDone,
		Prompt: "Thank you. I've prepared your dashboard.",
		Done:   true,
	}, nil
}

func (s *Service) state(f *flow, prompt string) State {
	st := State{
		FlowID: f.id,
		Phase:  f.phase,
		Prompt: prompt,
	}
	if f.phase == PhaseQuestion {
		st.Optional = intakeQuestions[f.questionIdx].optional
	}
	return st
}

// Profile loads a previously saved intake record.
func (s *Service) Profile(ctx context.Context, id identity.Identity) (wellness.Profile, bool, error) {
	return s.sinks.For(id).Profile(ctx, id.ID())
}
