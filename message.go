package compat

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/oriumgames/compat/host"
	"github.com/oriumgames/compat/version"
)

// Action attaches click and hover behavior to a placeholder in a message.
// When the message is rendered the placeholder is replaced by Replacement,
// which carries the behavior.
type Action struct {
	Placeholder string
	Replacement string

	ClickRunCommand     string
	ClickSuggestCommand string
	ClickOpenURL        string
	HoverText           string
	HoverItem           *host.ItemStack
}

// NewAction creates an action replacing placeholder with replacement.
func NewAction(placeholder, replacement string) Action {
	return Action{Placeholder: placeholder, Replacement: replacement}
}

// Message is one or more lines of chat sent together, with the actions bound
// to placeholders in them.
type Message struct {
	Lines   []string
	Actions []Action
	// Translate converts "&" color codes before the message is rendered.
	Translate bool
}

// NewMessage creates a single line message.
func NewMessage(line string, actions ...Action) Message {
	return Message{Lines: []string{line}, Actions: actions, Translate: true}
}

// MessageBlock creates a message of several lines sharing actions.
func MessageBlock(lines []string, actions ...Action) Message {
	return Message{Lines: lines, Actions: actions, Translate: true}
}

// WithAction returns a copy of m with a added.
func (m Message) WithAction(a Action) Message {
	m.Actions = append(m.Actions[:len(m.Actions):len(m.Actions)], a)
	return m
}

// AddClickRunCommand binds a run command click to placeholder.
func (m Message) AddClickRunCommand(placeholder, replacement, command string) Message {
	a := NewAction(placeholder, replacement)
	a.ClickRunCommand = command
	return m.WithAction(a)
}

// AddClickSuggestCommand binds a suggest command click to placeholder.
func (m Message) AddClickSuggestCommand(placeholder, replacement, suggestion string) Message {
	a := NewAction(placeholder, replacement)
	a.ClickSuggestCommand = suggestion
	return m.WithAction(a)
}

// AddClickOpenURL binds an open URL click to placeholder.
func (m Message) AddClickOpenURL(placeholder, replacement, url string) Message {
	a := NewAction(placeholder, replacement)
	a.ClickOpenURL = url
	return m.WithAction(a)
}

// AddHoverText binds hover text to placeholder.
func (m Message) AddHoverText(placeholder, replacement, text string) Message {
	a := NewAction(placeholder, replacement)
	a.HoverText = text
	return m.WithAction(a)
}

// AddHoverItem binds an item tooltip to placeholder.
func (m Message) AddHoverItem(placeholder, replacement string, it host.ItemStack) Message {
	a := NewAction(placeholder, replacement)
	a.HoverItem = &it
	return m.WithAction(a)
}

// placeholder returns a unique placeholder with the given kind prefix.
func placeholder(kind string) string {
	return "{" + kind + "_" + uuid.NewString() + "}"
}

// ClickRunCommand creates a message whose whole line runs command on click.
func ClickRunCommand(line, command string) Message {
	ph := placeholder("cR")
	return NewMessage(ph).AddClickRunCommand(ph, line, command)
}

// ClickSuggestCommand creates a message whose whole line suggests a command on
// click.
func ClickSuggestCommand(line, suggestion string) Message {
	ph := placeholder("cS")
	return NewMessage(ph).AddClickSuggestCommand(ph, line, suggestion)
}

// ClickOpenURL creates a message whose whole line opens url on click.
func ClickOpenURL(line, url string) Message {
	ph := placeholder("oU")
	return NewMessage(ph).AddClickOpenURL(ph, line, url)
}

// HoverText creates a message whose whole line shows text on hover.
func HoverText(line, text string) Message {
	ph := placeholder("hT")
	return NewMessage(ph).AddHoverText(ph, line, text)
}

// Formatter renders a line and its actions into the rich text object of the
// host.
type Formatter interface {
	Format(text string, actions []Action) (any, error)
}

// FormatterFunc adapts a function to a Formatter.
type FormatterFunc func(text string, actions []Action) (any, error)

// Format calls f.
func (f FormatterFunc) Format(text string, actions []Action) (any, error) {
	return f(text, actions)
}

// PlainFormatter renders lines as plain strings, substituting every
// placeholder with its replacement and dropping the click and hover behavior.
type PlainFormatter struct{}

// Format replaces each placeholder with its plain replacement.
func (PlainFormatter) Format(text string, actions []Action) (any, error) {
	for _, a := range actions {
		text = strings.ReplaceAll(text, a.Placeholder, a.Replacement)
	}
	return text, nil
}

// MessageManager renders and sends messages.
type MessageManager interface {
	// Process renders every line of msgs, in order.
	Process(msgs ...Message) ([]any, error)
	// Send renders msgs and sends every line to o.
	Send(o host.Observer, msgs ...Message) error
}

var messageTable = version.Table[func(*API) (MessageManager, error)]{
	Capability: "messages",
	Floor:      "1.8",
	Breakpoints: []version.Breakpoint[func(*API) (MessageManager, error)]{
		{Through: "1.15.2", Name: "legacy", New: newMessageManager(true)},
	},
	Default: version.Breakpoint[func(*API) (MessageManager, error)]{Name: "modern", New: newMessageManager(false)},
}

func newMessageManager(legacy bool) func(*API) (MessageManager, error) {
	return func(a *API) (MessageManager, error) {
		colors, err := a.colors.Get()
		if err != nil {
			return nil, err
		}
		return &messageManager{colors: colors, formatter: a.formatter, legacy: legacy}, nil
	}
}

// messageManager implements MessageManager. Plain string lines are sent as
// legacy chat packets on hosts before 1.16.
type messageManager struct {
	colors    ChatColors
	formatter Formatter
	legacy    bool
}

// Process formats each message with the resolved formatter.
func (m *messageManager) Process(msgs ...Message) ([]any, error) {
	var out []any
	for _, msg := range msgs {
		actions := msg.Actions
		if msg.Translate {
			actions = make([]Action, len(msg.Actions))
			for i, a := range msg.Actions {
				a.Replacement = m.colors.Translate(a.Replacement)
				a.HoverText = m.colors.Translate(a.HoverText)
				actions[i] = a
			}
		}
		for _, line := range msg.Lines {
			if msg.Translate {
				line = m.colors.Translate(line)
			}
			rendered, err := m.formatter.Format(line, actions)
			if err != nil {
				return nil, fmt.Errorf("compat: format message line %q: %w", line, err)
			}
			out = append(out, rendered)
		}
	}
	return out, nil
}

// Send formats msgs and sends each result to o.
func (m *messageManager) Send(o host.Observer, msgs ...Message) error {
	lines, err := m.Process(msgs...)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if s, ok := line.(string); ok && m.legacy {
			line = &host.LegacyChat{Text: s}
		}
		if err := o.SendMessage(line); err != nil {
			return fmt.Errorf("compat: send message to %s: %w", o.Name(), err)
		}
	}
	return nil
}
