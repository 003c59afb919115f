// Package publish invokes the external publish tool for one package at a
// time and classifies its outcome.
package publish

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/pubctl/internal/observability"
	"github.com/danmuck/pubctl/internal/tools"
)

var ErrPublishFailed = errors.New("publish: failed")

type Outcome string

const (
	OutcomePublished        Outcome = "published"
	OutcomeAlreadyPublished Outcome = "already_published"

	outcomeFailed = "failed"
)

// Config describes the publish tool invocation.
type Config struct {
	Command                []string
	RegistryFlag           string
	RegistryURL            string
	AlreadyPublishedMarker string
	// TokenEnv names the variable the credential is forwarded under.
	TokenEnv string
	Token    string
}

// Target is one package to publish.
type Target struct {
	Name string
	Dir  string
}

type Result struct {
	Package  string
	Outcome  Outcome
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// PublishError is a non-recoverable publish failure.
type PublishError struct {
	Package  string
	ExitCode int32
	Stderr   string
	Err      error
}

func (e *PublishError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("failed to publish %s (exit=%d)", e.Package, e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ":\n" + stderr
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PublishError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPublishFailed}
	}
	return []error{ErrPublishFailed, e.Err}
}

type Publisher struct {
	cfg    Config
	runner tools.CommandRunner
	log    zerolog.Logger
}

func NewPublisher(cfg Config, runner tools.CommandRunner, logger zerolog.Logger) *Publisher {
	if runner == nil {
		runner = tools.ExecRunner{}
	}
	return &Publisher{cfg: cfg, runner: runner, log: logger}
}

// Command returns the invocation used for target.
func (p *Publisher) Command(target Target) tools.Command {
	args := append([]string(nil), p.cfg.Command[1:]...)
	if p.cfg.RegistryURL != "" {
		args = append(args, p.cfg.RegistryFlag, p.cfg.RegistryURL)
	}
	var env []string
	if p.cfg.TokenEnv != "" && p.cfg.Token != "" {
		env = append(env, p.cfg.TokenEnv+"="+p.cfg.Token)
	}
	return tools.Command{
		Name: p.cfg.Command[0],
		Args: args,
		Dir:  target.Dir,
		Env:  env,
	}
}

// Publish blocks until the tool exits. A failure whose stderr carries the
// already-published marker is reported as OutcomeAlreadyPublished; any other
// failure is a *PublishError.
func (p *Publisher) Publish(target Target) (Result, error) {
	cmd := p.Command(target)
	p.log.Debug().
		Str("package", target.Name).
		Str("dir", target.Dir).
		Str("cmd", cmd.Name).
		Strs("args", cmd.Args).
		Msg("publish exec")

	start := time.Now()
	stdout, stderr, exitCode, err := p.runner.Run(cmd)
	res := Result{
		Package:  target.Name,
		Stdout:   string(stdout),
		Stderr:   string(stderr),
		Duration: time.Since(start),
	}

	if err == nil && exitCode == 0 {
		res.Outcome = OutcomePublished
		observability.RecordPublish(target.Name, string(res.Outcome), res.Duration)
		return res, nil
	}
	if p.cfg.AlreadyPublishedMarker != "" && strings.Contains(res.Stderr, p.cfg.AlreadyPublishedMarker) {
		res.Outcome = OutcomeAlreadyPublished
		observability.RecordPublish(target.Name, string(res.Outcome), res.Duration)
		return res, nil
	}

	observability.RecordPublish(target.Name, outcomeFailed, res.Duration)
	if err == nil {
		err = fmt.Errorf("exit status %d", exitCode)
	}
	return res, &PublishError{
		Package:  target.Name,
		ExitCode: exitCode,
		Stderr:   res.Stderr,
		Err:      err,
	}
}
