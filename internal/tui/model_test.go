package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labrag/internal/domain"
	"labrag/internal/service"
)

type fakeService struct {
	requests []service.Request
	labs     domain.LabValues
	answer   string
	err      error
}

func (f *fakeService) Interpret(_ context.Context, req service.Request) (*service.Result, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	res := &service.Result{Labs: f.labs}
	if req.Question != "" {
		res.Question = req.Question
		res.Answer = f.answer
	}
	return res, nil
}

type loadLog struct{ paths []string }

func (l *loadLog) load(path string) (domain.Document, error) {
	l.paths = append(l.paths, path)
	if path == "missing.pdf" {
		return domain.Document{}, errors.New("open missing.pdf: no such file or directory")
	}
	return service.NewDocument(path, []byte("%PDF")), nil
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(Model)
}

// press sends a key and runs the resulting command synchronously, feeding
// its message back into the model.
func press(t *testing.T, m Model, key tea.KeyType) Model {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: key})
	m = next.(Model)
	if cmd == nil {
		return m
	}
	msg := cmd()
	switch msg.(type) {
	case processedMsg, answeredMsg:
		assert.True(t, m.busy)
		next, _ = m.Update(msg)
		return next.(Model)
	}
	return m
}

func sized(m Model) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model)
}

func TestUploadThenAsk(t *testing.T) {
	svc := &fakeService{
		labs:   domain.LabValues{{Test: "Hemoglobin", Value: "13.9"}, {Test: "WBC", Value: "9800"}},
		answer: "Both values are in the normal range.",
	}
	loader := &loadLog{}
	m := sized(New(context.Background(), svc, loader.load, ""))
	assert.Contains(t, m.View(), Disclaimer)

	m = typeText(t, m, "report.pdf")
	m = press(t, m, tea.KeyEnter)
	assert.Equal(t, "report.pdf", m.path)
	assert.Equal(t, service.StateProcessed, m.result.State())
	assert.Contains(t, m.View(), "Hemoglobin")
	assert.Empty(t, m.input.Value())

	m = typeText(t, m, "Are my results normal?")
	m = press(t, m, tea.KeyEnter)
	assert.Equal(t, service.StateAnswered, m.result.State())
	assert.Contains(t, m.renderResult(), "Both values are in the normal range.")

	m = typeText(t, m, "What about WBC?")
	m = press(t, m, tea.KeyEnter)

	require.Len(t, svc.requests, 3)
	assert.Empty(t, svc.requests[0].Question)
	assert.Equal(t, "Are my results normal?", svc.requests[1].Question)
	assert.Equal(t, "What about WBC?", svc.requests[2].Question)
	assert.Equal(t, []string{"report.pdf", "report.pdf", "report.pdf"}, loader.paths)
}

func TestUploadErrorStaysIdle(t *testing.T) {
	svc := &fakeService{err: domain.ErrFormat}
	loader := &loadLog{}
	m := sized(New(context.Background(), svc, loader.load, ""))

	m = typeText(t, m, "notes.txt")
	m = press(t, m, tea.KeyEnter)
	assert.Empty(t, m.path)
	assert.Nil(t, m.result)
	assert.Contains(t, m.status, "Error:")
	assert.False(t, m.busy)

	m = typeText(t, m, "missing.pdf")
	m = press(t, m, tea.KeyEnter)
	assert.Contains(t, m.status, "no such file")
	assert.Len(t, svc.requests, 1)
}

func TestAnswerErrorKeepsLabs(t *testing.T) {
	svc := &fakeService{labs: domain.LabValues{{Test: "WBC", Value: "9800"}}}
	m := sized(New(context.Background(), svc, (&loadLog{}).load, ""))
	m = typeText(t, m, "report.pdf")
	m = press(t, m, tea.KeyEnter)

	svc.err = domain.ErrService
	m = typeText(t, m, "ok?")
	m = press(t, m, tea.KeyEnter)
	assert.Contains(t, m.status, domain.ErrService.Error())
	assert.Equal(t, "report.pdf", m.path)
	assert.Equal(t, service.StateProcessed, m.result.State())
}

func TestQuestionSentAsTyped(t *testing.T) {
	svc := &fakeService{labs: domain.LabValues{{Test: "WBC", Value: "9800"}}, answer: "Fine."}
	loader := &loadLog{}
	m := sized(New(context.Background(), svc, loader.load, ""))
	m = typeText(t, m, "  report.pdf ")
	m = press(t, m, tea.KeyEnter)
	assert.Equal(t, "report.pdf", m.path)

	m = typeText(t, m, "  Is my WBC ok?  ")
	m = press(t, m, tea.KeyEnter)
	require.Len(t, svc.requests, 2)
	assert.Equal(t, "  Is my WBC ok?  ", svc.requests[1].Question)
	assert.Equal(t, []string{"report.pdf", "report.pdf"}, loader.paths)
}

func TestCtrlOResetsToIdle(t *testing.T) {
	svc := &fakeService{labs: domain.LabValues{{Test: "WBC", Value: "9800"}}}
	m := sized(New(context.Background(), svc, (&loadLog{}).load, ""))
	m = typeText(t, m, "report.pdf")
	m = press(t, m, tea.KeyEnter)
	require.NotNil(t, m.result)

	m = press(t, m, tea.KeyCtrlO)
	assert.Empty(t, m.path)
	assert.Nil(t, m.result)
	assert.Equal(t, "path/to/report.pdf", m.input.Placeholder)
}

func TestBlankEnterIsIgnored(t *testing.T) {
	svc := &fakeService{}
	m := sized(New(context.Background(), svc, (&loadLog{}).load, ""))
	m = typeText(t, m, "   ")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, next.(Model).busy)
	assert.Empty(t, svc.requests)
}

func TestKeysIgnoredWhileBusy(t *testing.T) {
	svc := &fakeService{}
	m := sized(New(context.Background(), svc, (&loadLog{}).load, ""))
	m = typeText(t, m, "report.pdf")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m = next.(Model)

	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.True(t, next.(Model).busy)
}

func TestRenderLabs(t *testing.T) {
	assert.Equal(t, "No recognized lab values found.", RenderLabs(nil))
	got := RenderLabs(domain.LabValues{{Test: "WBC", Value: "9800"}, {Test: "Cholesterol", Value: "185"}})
	assert.Equal(t, "WBC          9800\nCholesterol  185", got)
}
