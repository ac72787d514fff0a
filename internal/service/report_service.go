package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"labrag/internal/domain"
	"labrag/internal/logging"
)

// Retriever returns the reference text closest to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (string, error)
}

// AnswerGenerator produces an explanation from context and a question.
type AnswerGenerator interface {
	Generate(ctx context.Context, reference, question string) (string, error)
}

// State is where an interaction ended up.
type State int

const (
	StateIdle State = iota
	StateProcessed
	StateAnswered
)

func (s State) String() string {
	switch s {
	case StateProcessed:
		return "processed"
	case StateAnswered:
		return "answered"
	default:
		return "idle"
	}
}

// Request is one user interaction: the current document and an optional question.
type Request struct {
	Document domain.Document
	Question string
}

// Result is everything shown to the user for one interaction.
type Result struct {
	RequestID string
	Labs      domain.LabValues
	Question  string
	Context   string
	Answer    string
}

// State reports the interaction state a result represents.
func (r *Result) State() State {
	switch {
	case r == nil:
		return StateIdle
	case r.Question != "":
		return StateAnswered
	default:
		return StateProcessed
	}
}

// ReportService orchestrates extraction, retrieval and answering. It holds
// no per-session state; every call recomputes from its inputs.
type ReportService struct {
	text    domain.TextExtractor
	labs    domain.LabExtractor
	refs    Retriever
	answers AnswerGenerator
	logger  *log.Logger
}

func NewReportService(text domain.TextExtractor, labs domain.LabExtractor, refs Retriever, answers AnswerGenerator) *ReportService {
	return &ReportService{
		text:    text,
		labs:    labs,
		refs:    refs,
		answers: answers,
		logger:  logging.Logger(logging.SourceApp),
	}
}

// Process extracts the document text and the lab values in it. Format
// errors fail before any extraction is attempted.
func (s *ReportService) Process(ctx context.Context, doc domain.Document) (domain.LabValues, error) {
	text, err := s.text.Extract(ctx, doc.Reader, doc.Size)
	if err != nil {
		return nil, err
	}
	return s.labs.Extract(text), nil
}

// BuildContext retrieves a reference for each lab by its bare test name and
// joins them into one context block.
func (s *ReportService) BuildContext(ctx context.Context, labs domain.LabValues) (string, error) {
	var b strings.Builder
	for _, lab := range labs {
		info, err := s.refs.Retrieve(ctx, lab.Test)
		if err != nil {
			return "", fmt.Errorf("retrieve %s: %w", lab.Test, err)
		}
		fmt.Fprintf(&b, "\n%s value is %s. Reference: %s", lab.Test, lab.Value, info)
	}
	return b.String(), nil
}

// Interpret runs the whole interaction for req. A blank question stops after
// lab extraction.
func (s *ReportService) Interpret(ctx context.Context, req Request) (*Result, error) {
	id := uuid.New().String()
	logger := s.logger.With("request_id", id, "document", req.Document.Name)

	labs, err := s.Process(ctx, req.Document)
	if err != nil {
		logger.Error("processing report failed", "err", err)
		return nil, err
	}
	logger.Info("report processed", "labs", len(labs))

	res := &Result{RequestID: id, Labs: labs}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return res, nil
	}

	refs, err := s.BuildContext(ctx, labs)
	if err != nil {
		logger.Error("building context failed", "err", err)
		return nil, err
	}
	answer, err := s.answers.Generate(ctx, refs, req.Question)
	if err != nil {
		logger.Error("answer failed", "err", err)
		return nil, err
	}
	logger.Info("question answered", "answer_len", len(answer))

	res.Question = req.Question
	res.Context = refs
	res.Answer = answer
	return res, nil
}
