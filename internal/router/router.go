// Package router is the Telegram presentation layer: it turns incoming
// commands and inline-button callbacks into engine operations and renders
// the results.
package router

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"remindbot/internal/reminder"
	kit "remindbot/internal/transport"
	logx "remindbot/pkg/logx"
)

// Request is the per-update context handed through the middleware chain.
type Request struct {
	Update  kit.Update
	Chat    kit.ChatTarget
	FromID  int64
	Command string
	Args    []string
	Payload string
}

// pendingInput tracks a user who pressed a custom-timer button and owes us
// one text message with the timer parameters.
type pendingInput struct {
	catKey  string
	subKey  string
	started time.Time
}

const pendingInputTTL = 10 * time.Minute

type Router struct {
	log     logx.Logger
	adapter kit.Adapter
	svc     *reminder.Service
	admin   *reminder.Admin
	roles   reminder.RoleChecker

	handler HandlerFunc

	mu      sync.Mutex
	pending map[int64]pendingInput

	in      chan kit.Update
	cancel  context.CancelFunc
	done    chan struct{}
	runMu   sync.Mutex
	running bool
}

func New(log logx.Logger, adapter kit.Adapter, svc *reminder.Service, admin *reminder.Admin, roles reminder.RoleChecker) *Router {
	if log.IsZero() {
		log = logx.Nop()
	}
	r := &Router{
		log:     log.With(logx.String("svc", "router")),
		adapter: adapter,
		svc:     svc,
		admin:   admin,
		roles:   roles,
		pending: map[int64]pendingInput{},
		in:      make(chan kit.Update, 64),
	}
	r.handler = Chain(r.dispatch,
		MWPanicRecover(r.log),
		MWRequestLog(r.log),
		MWTimeout(30*time.Second),
	)
	return r
}

func (r *Router) Start(ctx context.Context) error {
	r.runMu.Lock()
	defer r.runMu.Unlock()
	if r.running {
		return nil
	}
	r.running = true

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	if err := r.adapter.Start(runCtx, r.in); err != nil {
		cancel()
		close(r.done)
		r.running = false
		return err
	}

	if mu, ok := r.adapter.(kit.CommandMenuUpdater); ok {
		mctx, mcancel := context.WithTimeout(runCtx, 10*time.Second)
		if err := mu.UpdateMenuCommands(mctx, menuCommands()); err != nil {
			r.log.Warn("menu command update failed", logx.Err(err))
		}
		mcancel()
	}

	go r.loop(runCtx)
	return nil
}

func (r *Router) Stop(ctx context.Context) error {
	r.runMu.Lock()
	cancel := r.cancel
	done := r.done
	r.cancel = nil
	r.running = false
	r.runMu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	err := r.adapter.Stop(ctx)
	select {
	case <-done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}

func (r *Router) loop(ctx context.Context) {
	defer close(r.done)
	for {
		select {
		case <-ctx.Done():
			return
		case up := <-r.in:
			req := requestFromUpdate(up)
			if req == nil {
				continue
			}
			if err := r.handler(ctx, req); err != nil {
				r.reply(ctx, req, "❌ Произошла ошибка, попробуйте ещё раз.")
			}
		}
	}
}

func requestFromUpdate(up kit.Update) *Request {
	switch up.Kind {
	case kit.UpdateMessage:
		if up.Message == nil {
			return nil
		}
		req := &Request{
			Update: up,
			Chat:   kit.ChatTarget{ChatID: up.Message.ChatID},
			FromID: up.Message.FromID,
		}
		text := strings.TrimSpace(up.Message.Text)
		if strings.HasPrefix(text, "/") {
			parts := strings.Fields(text)
			cmd := strings.TrimPrefix(parts[0], "/")
			// strip @botname suffix in group chats
			if i := strings.IndexByte(cmd, '@'); i >= 0 {
				cmd = cmd[:i]
			}
			req.Command = strings.ToLower(cmd)
			req.Args = parts[1:]
		} else {
			req.Payload = text
		}
		return req
	case kit.UpdateCallback:
		if up.Callback == nil {
			return nil
		}
		return &Request{
			Update:  up,
			Chat:    kit.ChatTarget{ChatID: up.Callback.ChatID},
			FromID:  up.Callback.FromID,
			Command: "callback",
			Payload: up.Callback.Data,
		}
	default:
		return nil
	}
}

// dispatch routes one request: slash commands, inline-button callbacks, or
// a plain text message answering a pending custom-timer prompt.
func (r *Router) dispatch(ctx context.Context, req *Request) error {
	if req.Update.Kind == kit.UpdateCallback {
		return r.handleCallback(ctx, req)
	}

	switch req.Command {
	case "start":
		return r.cmdStart(ctx, req)
	case "my", "reminders":
		return r.cmdMyReminders(ctx, req)
	case "help":
		return r.cmdHelp(ctx, req)
	case "admin":
		return r.cmdAdmin(ctx, req)
	case "":
		return r.handlePlainText(ctx, req)
	default:
		r.reply(ctx, req, "❓ Неизвестная команда. Наберите /help.")
		return nil
	}
}

func (r *Router) reply(ctx context.Context, req *Request, text string) {
	if _, err := r.adapter.SendText(ctx, req.Chat, text, nil); err != nil {
		r.log.Warn("reply failed", logx.Int64("chat", req.Chat.ChatID), logx.Err(err))
	}
}

func (r *Router) replyMarkup(ctx context.Context, req *Request, text string, markup any) {
	opt := &kit.SendOptions{ReplyMarkupAdapter: markup}
	if _, err := r.adapter.SendText(ctx, req.Chat, text, opt); err != nil {
		r.log.Warn("reply failed", logx.Int64("chat", req.Chat.ChatID), logx.Err(err))
	}
}

// userError renders domain rejections; anything else bubbles up to the
// middleware as an internal error.
func userError(err error) (string, bool) {
	switch {
	case errors.Is(err, reminder.ErrNotFound):
		return "❌ Категория или подкатегория не найдена!", true
	case errors.Is(err, reminder.ErrValidation):
		return "❌ Некорректные данные! Проверьте значения времени и тип подкатегории.", true
	case errors.Is(err, reminder.ErrInvariant):
		return "❌ Нельзя удалить последнюю подкатегорию в категории!", true
	case errors.Is(err, reminder.ErrUnauthorized):
		return "🚫 Эта операция доступна только администраторам.", true
	default:
		return "", false
	}
}
