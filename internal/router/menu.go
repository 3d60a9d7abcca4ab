package router

import (
	tele "gopkg.in/telebot.v4"

	"remindbot/internal/reminder"
	kit "remindbot/internal/transport"
)

func menuCommands() []kit.BotCommand {
	return []kit.BotCommand{
		{Command: "start", Description: "Главное меню с категориями"},
		{Command: "my", Description: "Активные напоминания"},
		{Command: "help", Description: "Справка по боту"},
		{Command: "admin", Description: "🔒 Управление категориями"},
	}
}

// Buttons carry tagged "op:key[:key]" callback data; see handleCallback.

func categoriesMarkup(cats []reminder.Category) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	for _, c := range cats {
		m.InlineKeyboard = append(m.InlineKeyboard, []tele.InlineButton{
			{Text: c.Name, Data: "cat:" + c.Key},
		})
	}
	return m
}

func subcategoriesMarkup(catKey string, subs []reminder.Subcategory) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	for _, s := range subs {
		m.InlineKeyboard = append(m.InlineKeyboard, []tele.InlineButton{
			{Text: s.Name, Data: "sub:" + catKey + ":" + s.Key},
		})
	}
	m.InlineKeyboard = append(m.InlineKeyboard, []tele.InlineButton{
		{Text: "↩️ Назад к категориям", Data: "menu:main"},
	})
	return m
}
