package router

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"remindbot/internal/reminder"
	"remindbot/internal/timecode"
)

const dueTimeLayout = "02.01.2006 в 15:04:05"

func (r *Router) cmdStart(ctx context.Context, req *Request) error {
	cats := r.svc.Categories()
	r.replyMarkup(ctx, req, "🎛️ Выберите категорию:", categoriesMarkup(cats))
	return nil
}

func (r *Router) cmdMyReminders(ctx context.Context, req *Request) error {
	list := r.svc.ListForOwner(req.FromID)
	if len(list) == 0 {
		r.reply(ctx, req, "⏰ У вас нет активных напоминаний!")
		return nil
	}

	now := time.Now()
	var b strings.Builder
	b.WriteString("⏰ Ваши напоминания\n")
	for _, rem := range list {
		left := int64(rem.DueAt.Sub(now) / time.Second)
		if left < 0 {
			continue
		}
		fmt.Fprintf(&b, "\n📁 %s\n⏰ Осталось: %s\n📝 %s\n",
			rem.CategoryLabel, timecode.Format(left), rem.Message)
	}
	r.reply(ctx, req, b.String())
	return nil
}

func (r *Router) cmdHelp(ctx context.Context, req *Request) error {
	help := strings.Join([]string{
		"📖 Помощь по боту напоминаний",
		"",
		"🎯 Основные команды:",
		"/start - Главное меню с категориями",
		"/my - Активные напоминания",
		"/help - Эта справка",
		"",
		"💡 Особенности:",
		"• Автоматическая отправка напоминаний в личные сообщения",
		"• Гибкая настройка времени",
		"• Интуитивный интерфейс с кнопками",
		"",
		"⚙️ Для администраторов: /admin",
	}, "\n")
	r.reply(ctx, req, help)
	return nil
}

// handlePlainText consumes the one text message a user owes after pressing
// a custom-timer button. Anything else gets a gentle nudge to /start.
func (r *Router) handlePlainText(ctx context.Context, req *Request) error {
	r.mu.Lock()
	p, ok := r.pending[req.FromID]
	if ok {
		delete(r.pending, req.FromID)
	}
	r.mu.Unlock()

	if !ok || time.Since(p.started) > pendingInputTTL {
		r.reply(ctx, req, "🎛️ Наберите /start, чтобы открыть меню.")
		return nil
	}

	fields := strings.Fields(req.Payload)
	if len(fields) < 4 {
		r.reply(ctx, req, "❌ Нужно 4 значения: <дни> <часы> <минуты> <текст напоминания>")
		return nil
	}
	days, err1 := strconv.Atoi(fields[0])
	hours, err2 := strconv.Atoi(fields[1])
	minutes, err3 := strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil || err3 != nil {
		r.reply(ctx, req, "❌ Ошибка! Введите корректные числовые значения.")
		return nil
	}
	message := strings.Join(fields[3:], " ")

	rem, err := r.svc.CreateCustom(ctx, p.catKey, p.subKey, req.FromID, days, hours, minutes, message)
	if err != nil {
		if msg, ok := userError(err); ok {
			r.reply(ctx, req, msg)
			return nil
		}
		return err
	}

	total := timecode.FromParts(days, hours, minutes)
	r.reply(ctx, req, fmt.Sprintf(
		"✅ Настраиваемый таймер установлен!\n📁 Категория: %s\n⏰ Через: %s\n📝 Сообщение: %s\n🕐 Сработает: %s",
		rem.CategoryLabel, timecode.Format(total), rem.Message, rem.DueAt.Format(dueTimeLayout)))
	return nil
}

const adminUsage = `⚙️ Управление категориями

/admin list - дерево категорий
/admin newcat <название> - создать категорию
/admin rencat <ключ> <название> - переименовать категорию
/admin delcat <ключ> - удалить категорию
/admin newsub <категория> <custom|fixed> <название> - добавить подкатегорию
/admin rensub <категория> <ключ> <название> - переименовать подкатегорию
/admin delsub <категория> <ключ> - удалить подкатегорию
/admin settime <категория> <ключ> <д> <ч> <м> <сообщение> - настроить фиксированный таймер`

func (r *Router) cmdAdmin(ctx context.Context, req *Request) error {
	if r.roles == nil || !r.roles.IsAdmin(req.FromID) {
		r.reply(ctx, req, "🚫 Эта операция доступна только администраторам.")
		return nil
	}
	if len(req.Args) == 0 {
		r.reply(ctx, req, adminUsage)
		return nil
	}

	var err error
	var out string
	sub := strings.ToLower(req.Args[0])
	args := req.Args[1:]

	switch sub {
	case "list":
		out = r.renderTree()
	case "newcat":
		out, err = r.adminNewCat(ctx, req.FromID, args)
	case "rencat":
		out, err = r.adminRenCat(ctx, req.FromID, args)
	case "delcat":
		out, err = r.adminDelCat(ctx, req.FromID, args)
	case "newsub":
		out, err = r.adminNewSub(ctx, req.FromID, args)
	case "rensub":
		out, err = r.adminRenSub(ctx, req.FromID, args)
	case "delsub":
		out, err = r.adminDelSub(ctx, req.FromID, args)
	case "settime":
		out, err = r.adminSetTime(ctx, req.FromID, args)
	default:
		out = adminUsage
	}

	if err != nil {
		if msg, ok := userError(err); ok {
			r.reply(ctx, req, msg)
			return nil
		}
		return err
	}
	r.reply(ctx, req, out)
	return nil
}

func (r *Router) renderTree() string {
	var b strings.Builder
	b.WriteString("📁 Категории\n")
	for _, c := range r.svc.Categories() {
		fmt.Fprintf(&b, "\n%s (%s)\n", c.Name, c.Key)
		for _, key := range c.Order {
			s, ok := c.Subs[key]
			if !ok {
				continue
			}
			switch {
			case s.Kind == reminder.KindFixed && s.Fixed != nil:
				fmt.Fprintf(&b, "  • %s (%s) - %s, «%s»\n",
					s.Name, s.Key, timecode.Canonical(s.Fixed.Seconds), s.Fixed.Message)
			case s.Kind == reminder.KindFixed:
				fmt.Fprintf(&b, "  • %s (%s) - не настроен\n", s.Name, s.Key)
			default:
				fmt.Fprintf(&b, "  • %s (%s) - настраиваемый\n", s.Name, s.Key)
			}
		}
	}
	return b.String()
}

func (r *Router) adminNewCat(ctx context.Context, actor int64, args []string) (string, error) {
	if len(args) < 1 {
		return "Использование: /admin newcat <название>", nil
	}
	name := strings.Join(args, " ")
	key, err := r.admin.CreateCategory(ctx, actor, name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Новая категория создана!\n📁 %s (%s)", name, key), nil
}

func (r *Router) adminRenCat(ctx context.Context, actor int64, args []string) (string, error) {
	if len(args) < 2 {
		return "Использование: /admin rencat <ключ> <название>", nil
	}
	name := strings.Join(args[1:], " ")
	if err := r.admin.RenameCategory(ctx, actor, args[0], name); err != nil {
		return "", err
	}
	return "✅ Категория переименована: " + name, nil
}

func (r *Router) adminDelCat(ctx context.Context, actor int64, args []string) (string, error) {
	if len(args) < 1 {
		return "Использование: /admin delcat <ключ>", nil
	}
	if err := r.admin.DeleteCategory(ctx, actor, args[0]); err != nil {
		return "", err
	}
	return "✅ Категория удалена: " + args[0], nil
}

func (r *Router) adminNewSub(ctx context.Context, actor int64, args []string) (string, error) {
	if len(args) < 3 {
		return "Использование: /admin newsub <категория> <custom|fixed> <название>", nil
	}
	kind, err := reminder.ParseKind(strings.ToLower(args[1]))
	if err != nil {
		return "", err
	}
	name := strings.Join(args[2:], " ")
	key, err := r.admin.AddSubcategory(ctx, actor, args[0], name, kind)
	if err != nil {
		return "", err
	}
	out := fmt.Sprintf("✅ Новая подкатегория добавлена!\n📝 %s (%s)", name, key)
	if kind == reminder.KindFixed {
		out += "\n⚠️ Настройте время: /admin settime " + args[0] + " " + key + " <д> <ч> <м> <сообщение>"
	}
	return out, nil
}

func (r *Router) adminRenSub(ctx context.Context, actor int64, args []string) (string, error) {
	if len(args) < 3 {
		return "Использование: /admin rensub <категория> <ключ> <название>", nil
	}
	name := strings.Join(args[2:], " ")
	if err := r.admin.RenameSubcategory(ctx, actor, args[0], args[1], name); err != nil {
		return "", err
	}
	return "✅ Подкатегория переименована: " + name, nil
}

func (r *Router) adminDelSub(ctx context.Context, actor int64, args []string) (string, error) {
	if len(args) < 2 {
		return "Использование: /admin delsub <категория> <ключ>", nil
	}
	if err := r.admin.DeleteSubcategory(ctx, actor, args[0], args[1]); err != nil {
		return "", err
	}
	return "✅ Подкатегория удалена: " + args[1], nil
}

func (r *Router) adminSetTime(ctx context.Context, actor int64, args []string) (string, error) {
	if len(args) < 6 {
		return "Использование: /admin settime <категория> <ключ> <д> <ч> <м> <сообщение>", nil
	}
	days, err1 := strconv.Atoi(args[2])
	hours, err2 := strconv.Atoi(args[3])
	minutes, err3 := strconv.Atoi(args[4])
	if err1 != nil || err2 != nil || err3 != nil {
		return "❌ Ошибка! Введите корректные числовые значения.", nil
	}
	message := strings.Join(args[5:], " ")
	if err := r.admin.ConfigureFixedSubcategory(ctx, actor, args[0], args[1], days, hours, minutes, message); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Таймер настроен: %s, «%s»",
		timecode.Canonical(timecode.FromParts(days, hours, minutes)), message), nil
}
