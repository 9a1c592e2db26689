// Package log provides the project's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// simple Field type for structured context. Entries flow through a
// formatter/output pipeline so the same call sites can emit text for the
// console or JSON for collection.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("logwriter"))
//	l.Info("log file opened", log.Str("name", "log_12.dat"))
//
// # Interop
//
// To integrate with libraries expecting *log.Logger, use RedirectStdLog.
package log
