package router

import (
	"context"
	"fmt"
	"strings"
	"time"

	"remindbot/internal/reminder"
	"remindbot/internal/timecode"
	logx "remindbot/pkg/logx"
)

// handleCallback dispatches tagged inline-button data:
//
//	"menu:main"          back to the category menu
//	"cat:<key>"          show a category's subcategories
//	"sub:<cat>:<sub>"    create a fixed reminder or prompt for a custom one
func (r *Router) handleCallback(ctx context.Context, req *Request) error {
	cb := req.Update.Callback
	ack := func(text string) {
		if err := r.adapter.AnswerCallback(ctx, cb.ID, text); err != nil {
			r.log.Debug("callback answer failed", logx.Err(err))
		}
	}

	op, rest, _ := strings.Cut(req.Payload, ":")
	switch op {
	case "menu":
		ack("")
		return r.cmdStart(ctx, req)

	case "cat":
		cat, err := r.svc.Category(rest)
		if err != nil {
			ack("Категория не найдена")
			return r.renderUserError(ctx, req, err)
		}
		subs, err := r.svc.Subcategories(rest)
		if err != nil {
			ack("")
			return r.renderUserError(ctx, req, err)
		}
		ack("")
		r.replyMarkup(ctx, req, cat.Name+" - Подкатегории:", subcategoriesMarkup(cat.Key, subs))
		return nil

	case "sub":
		catKey, subKey, ok := strings.Cut(rest, ":")
		if !ok {
			ack("")
			r.reply(ctx, req, "❌ Подкатегория не найдена!")
			return nil
		}
		return r.handleSubcategoryPick(ctx, req, catKey, subKey, ack)

	default:
		ack("")
		return nil
	}
}

func (r *Router) handleSubcategoryPick(ctx context.Context, req *Request, catKey, subKey string, ack func(string)) error {
	subs, err := r.svc.Subcategories(catKey)
	if err != nil {
		ack("")
		return r.renderUserError(ctx, req, err)
	}
	var picked *reminder.Subcategory
	for i := range subs {
		if subs[i].Key == subKey {
			picked = &subs[i]
			break
		}
	}
	if picked == nil {
		ack("")
		r.reply(ctx, req, "❌ Подкатегория не найдена!")
		return nil
	}

	switch picked.Kind {
	case reminder.KindFixed:
		rem, err := r.svc.CreateFixed(ctx, catKey, subKey, req.FromID)
		if err != nil {
			ack("")
			return r.renderUserError(ctx, req, err)
		}
		ack("Напоминание установлено")
		left := int64(time.Until(rem.DueAt) / time.Second)
		r.reply(ctx, req, fmt.Sprintf(
			"✅ Напоминание установлено!\n📁 Категория: %s\n⏰ Через: %s\n📝 Сообщение: %s\n🕐 Сработает: %s",
			rem.CategoryLabel, timecode.Format(left), rem.Message, rem.DueAt.Format(dueTimeLayout)))
		return nil

	default:
		r.mu.Lock()
		r.pending[req.FromID] = pendingInput{catKey: catKey, subKey: subKey, started: time.Now()}
		r.mu.Unlock()
		ack("")
		r.reply(ctx, req,
			"🔄 Настраиваемый таймер\nОтправьте параметры одним сообщением:\n<дни> <часы> <минуты> <текст напоминания>\nНапример: 0 2 30 Проверить печь")
		return nil
	}
}

func (r *Router) renderUserError(ctx context.Context, req *Request, err error) error {
	if msg, ok := userError(err); ok {
		r.reply(ctx, req, msg)
		return nil
	}
	return err
}
