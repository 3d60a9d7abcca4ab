// Package logx provides the bot's structured logging facade on top of
// zerolog: a value-type Logger with closure-based fields, and a Service that
// can re-point sinks (console/file) and levels at runtime during config
// hot-reload without invalidating loggers already handed out.
package logx
