package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot/internal/domain"
	"chatbot/internal/nlp"
)

type fakeChat struct {
	replies  map[string]domain.Reply
	recorded []domain.Transcript
	saveErr  error
}

func (f *fakeChat) Ask(_ context.Context, text string) (domain.Reply, error) {
	if r, ok := f.replies[text]; ok {
		return r, nil
	}
	return domain.Reply{Query: text, Text: "Sorry, I did not understand.", Index: -1}, nil
}

func (f *fakeChat) Record(_ context.Context, t domain.Transcript) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.recorded = append(f.recorded, t)
	return nil
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd != nil {
		switch out := cmd().(type) {
		case replyMsg, savedMsg:
			next, _ = m.Update(out)
			m = next.(Model)
		}
	}
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func newTestModel(chat *fakeChat) Model {
	m := New(context.Background(), chat, nlp.NewNormalizer(nlp.NewDictionaryLemmatizer()), "a tiny corpus")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model)
}

func TestModel_AskAndSave(t *testing.T) {
	chat := &fakeChat{replies: map[string]domain.Reply{
		"what is your name": {Query: "what is your name", Text: "my name is bot", Index: 2, Score: 0.8, Matched: true},
	}}
	m := newTestModel(chat)

	m = typeText(t, m, "what is your name")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.Len(t, m.history, 1)
	assert.False(t, m.waiting)
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.status, "Matched sentence #3")
	assert.Contains(t, m.View(), "You: ")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.Len(t, chat.recorded, 1)
	assert.Equal(t, "what is your name", chat.recorded[0].UserText)
	assert.Equal(t, "my name is bot", chat.recorded[0].BotText)
	assert.True(t, m.history[0].saved)
	assert.Equal(t, "Exchange saved.", m.status)
}

func TestModel_NoMatch(t *testing.T) {
	m := newTestModel(&fakeChat{})
	m = typeText(t, m, "zzz")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.Len(t, m.history, 1)
	assert.Equal(t, "No match.", m.status)
}

func TestModel_BlankInputIgnored(t *testing.T) {
	m := newTestModel(&fakeChat{})
	m = typeText(t, m, "   ")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, m.history)
}

func TestModel_SaveErrors(t *testing.T) {
	chat := &fakeChat{saveErr: errors.New("disk full")}
	m := newTestModel(chat)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, "Nothing to save yet.", m.status)

	m = typeText(t, m, "hi")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Contains(t, m.status, "disk full")
	assert.False(t, m.history[0].saved)
}

func TestModel_Highlight(t *testing.T) {
	m := newTestModel(&fakeChat{})
	out := m.highlight("cats like fish", "do you like cats")
	assert.Contains(t, out, "fish")
	assert.Contains(t, out, highlightStyle.Render("cats"))
	assert.Equal(t, "plain text", Model{}.highlight("plain text", "plain"))
}
