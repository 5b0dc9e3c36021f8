package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/deskbotai/larkgw/internal/actions"
	"github.com/deskbotai/larkgw/internal/history"
	"github.com/deskbotai/larkgw/internal/intent"
)

// Replier sends text back into a chat.
type Replier interface {
	Reply(ctx context.Context, chatID, text string) error
}

// Runner executes a classified request.
type Runner interface {
	Run(ctx context.Context, req actions.Request) (string, error)
}

// Mirror receives the dispatcher's persistence writes and serves the
// cold-start read. Writes are asynchronous and best effort.
type Mirror interface {
	SaveTurn(ctx context.Context, key, role, text string) error
	SaveFile(ctx context.Context, key string, entry history.FileEntry) error
	RecentTurns(ctx context.Context, key string, limit int) ([]history.Turn, error)
}

const emptyMessageGreeting = "你好！有什么我可以帮助你的吗？😊"

// Dispatcher runs one inbound event through gate, classification, action,
// history bookkeeping, and reply. Events for distinct conversations run
// concurrently; within one conversation the transcript records turns in
// completion order.
type Dispatcher struct {
	botID         string
	conversations *history.ConversationStore
	files         *history.FileCache
	runner        Runner
	replier       Replier
	mirror        Mirror
	logger        *slog.Logger
}

// NewDispatcher wires a Dispatcher. mirror may be nil to run memory-only.
func NewDispatcher(
	log *slog.Logger,
	botID string,
	conversations *history.ConversationStore,
	files *history.FileCache,
	runner Runner,
	replier Replier,
	mirror Mirror,
) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		botID:         botID,
		conversations: conversations,
		files:         files,
		runner:        runner,
		replier:       replier,
		mirror:        mirror,
		logger:        log.With(slog.String("service", "dispatch")),
	}
}

// Run processes one event to completion. It never returns an error: every
// failure either ends the event silently (gate, attachments) or is converted
// into a localized error reply.
func (d *Dispatcher) Run(ctx context.Context, ev Inbound) {
	log := d.logger.With(
		slog.String("message_id", ev.MessageID),
		slog.String("chat_id", ev.ChatID))
	log.Debug("event received", slog.String("chat_type", string(ev.ChatType)))

	// Attachments bypass the mention gate: files are catalogued whether or
	// not the bot was addressed.
	if ev.Attachment != nil {
		d.files.Record(ev.ChatID, *ev.Attachment)
		d.mirrorAsync("file", func(ctx context.Context, m Mirror) error {
			return m.SaveFile(ctx, ev.ChatID, *ev.Attachment)
		})
		log.Debug("attachment recorded",
			slog.String("type", ev.Attachment.Type),
			slog.String("name", ev.Attachment.Name))
		return
	}

	if !ShouldProcess(ev, d.botID) {
		log.Debug("event not addressed to bot, skipped")
		return
	}

	text := CleanText(ev.Text)
	if text == "" {
		d.send(ctx, ev.ChatID, emptyMessageGreeting, log)
		return
	}

	d.warmTranscript(ctx, ev.ChatID, log)

	dec := intent.Classify(text)
	log.Debug("message classified", slog.String("kind", string(dec.Kind)))

	// Progress notice for handlers that hit the platform or the model.
	if tip := actions.Tip(dec); tip != "" {
		d.send(ctx, ev.ChatID, tip, log)
	}

	reply := d.act(ctx, ev, text, dec, log)

	// The turn pair is recorded even when the handler failed; the error text
	// the user saw is part of the conversation. A clear request must not
	// repopulate the transcript it just emptied.
	if dec.Kind != intent.KindClearHistory {
		d.conversations.Append(ev.ChatID, history.RoleUser, text)
		d.conversations.Append(ev.ChatID, history.RoleAssistant, reply)
		d.mirrorAsync("turns", func(ctx context.Context, m Mirror) error {
			if err := m.SaveTurn(ctx, ev.ChatID, history.RoleUser, text); err != nil {
				return err
			}
			return m.SaveTurn(ctx, ev.ChatID, history.RoleAssistant, reply)
		})
	}

	d.send(ctx, ev.ChatID, reply, log)
	log.Info("event handled", slog.String("kind", string(dec.Kind)))
}

// act runs the handler and converts any failure, error or panic, into the
// localized reply text.
func (d *Dispatcher) act(ctx context.Context, ev Inbound, text string, dec intent.Decision, log *slog.Logger) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("handler panicked", slog.Any("panic", r), slog.String("kind", string(dec.Kind)))
			reply = actions.FailureText(dec.Kind, fmt.Errorf("%v", r))
		}
	}()

	out, err := d.runner.Run(ctx, actions.Request{
		Key:      ev.ChatID,
		ChatID:   ev.ChatID,
		SenderID: ev.SenderID,
		ParentID: ev.ParentID,
		Text:     text,
		Decision: dec,
	})
	if err != nil {
		log.Error("handler failed", slog.String("kind", string(dec.Kind)), slog.String("error", err.Error()))
		return actions.FailureText(dec.Kind, err)
	}
	return out
}

// send delivers a reply best effort; a delivery failure is logged, never
// propagated.
func (d *Dispatcher) send(ctx context.Context, chatID, text string, log *slog.Logger) {
	if err := d.replier.Reply(ctx, chatID, text); err != nil {
		log.Warn("send reply failed", slog.String("error", err.Error()))
	}
}

// mirrorWarmLimit bounds the transcript loaded for a cold key; it matches
// the in-memory transcript cap.
const mirrorWarmLimit = 200

// warmTranscript backfills an empty in-memory transcript from the mirror
// after a restart. A load failure is logged and the conversation proceeds
// without its pre-restart context.
func (d *Dispatcher) warmTranscript(ctx context.Context, key string, log *slog.Logger) {
	if d.mirror == nil || d.conversations.Len(key) > 0 {
		return
	}
	turns, err := d.mirror.RecentTurns(ctx, key, mirrorWarmLimit)
	if err != nil {
		log.Warn("transcript warm failed", slog.String("error", err.Error()))
		return
	}
	if len(turns) == 0 {
		return
	}
	d.conversations.Warm(key, turns)
	log.Debug("transcript warmed from mirror", slog.Int("turns", len(turns)))
}

const mirrorWriteTimeout = 5 * time.Second

func (d *Dispatcher) mirrorAsync(what string, write func(ctx context.Context, m Mirror) error) {
	if d.mirror == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mirrorWriteTimeout)
		defer cancel()
		if err := write(ctx, d.mirror); err != nil {
			d.logger.Warn("mirror write failed", slog.String("write", what), slog.String("error", err.Error()))
		}
	}()
}
