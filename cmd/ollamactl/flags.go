package main

import "time"

// Flag structs decouple cobra from logic for testing.

// GlobalFlags holds persistent flags shared by all commands.
type GlobalFlags struct {
	ConfigPath string
	LogLevel   string
	LogFile    string
}

// ServiceFlags overrides the supervised service settings from the CLI.
type ServiceFlags struct {
	Command     string
	ProcessName string
	Port        int
	Timeout     time.Duration
	Interval    time.Duration
	MaxAttempts int
}

type StatusFlags struct {
	Watch    bool
	Interval time.Duration
	History  bool
	Limit    int
}

type WaitFlags struct {
	Timeout time.Duration
}

type ServeFlags struct {
	Listen   string
	BasePath string
}

type ChatFlags struct {
	Model   string
	BaseURL string
	Prompt  string
	System  string
	NoTools bool
}
