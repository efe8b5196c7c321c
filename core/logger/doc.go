// Package logger is a standardized event logging framework for the
// interpreter. Sessions record their activity as newline delimited JSON
// objects so long-running shells can be audited after the fact.
package logger
