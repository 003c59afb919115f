package publish

import (
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/danmuck/pubctl/internal/testutil/testlog"
	"github.com/danmuck/pubctl/internal/tools"
)

type fakeRunner struct {
	commands []tools.Command
	results  []runResult
}

type runResult struct {
	stdout   []byte
	stderr   []byte
	exitCode int32
	err      error
}

func (r *fakeRunner) Run(cmd tools.Command) ([]byte, []byte, int32, error) {
	r.commands = append(r.commands, cmd)
	if len(r.results) > 0 {
		next := r.results[0]
		r.results = r.results[1:]
		return next.stdout, next.stderr, next.exitCode, next.err
	}
	return nil, nil, 0, nil
}

func testConfig() Config {
	return Config{
		Command:                []string{"forc", "publish"},
		RegistryFlag:           "--registry-url",
		RegistryURL:            "http://localhost:8080",
		AlreadyPublishedMarker: "already exists",
		TokenEnv:               "FORC_PUB_TOKEN",
		Token:                  "secret",
	}
}

func TestPublishSuccess(t *testing.T) {
	testlog.Start(t)
	runner := &fakeRunner{results: []runResult{{stdout: []byte("uploaded")}}}
	p := NewPublisher(testConfig(), runner, zerolog.Nop())

	res, err := p.Publish(Target{Name: "base", Dir: "/tmp/standards/src_base"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if res.Outcome != OutcomePublished || res.Stdout != "uploaded" {
		t.Fatalf("unexpected result: %+v", res)
	}

	if len(runner.commands) != 1 {
		t.Fatalf("expected one invocation, got %d", len(runner.commands))
	}
	cmd := runner.commands[0]
	if cmd.Name != "forc" || strings.Join(cmd.Args, " ") != "publish --registry-url http://localhost:8080" {
		t.Fatalf("unexpected command: %s %v", cmd.Name, cmd.Args)
	}
	if cmd.Dir != "/tmp/standards/src_base" {
		t.Fatalf("unexpected dir: %s", cmd.Dir)
	}
	if len(cmd.Env) != 1 || cmd.Env[0] != "FORC_PUB_TOKEN=secret" {
		t.Fatalf("credential not forwarded: %v", cmd.Env)
	}
}

func TestPublishAlreadyPublishedIsSkip(t *testing.T) {
	testlog.Start(t)
	runner := &fakeRunner{results: []runResult{{
		stderr:   []byte("error: package base@1.2.0 already exists in registry"),
		exitCode: 1,
		err:      errors.New("exit status 1"),
	}}}
	res, err := NewPublisher(testConfig(), runner, zerolog.Nop()).Publish(Target{Name: "base", Dir: "d"})
	if err != nil {
		t.Fatalf("expected skip, got %v", err)
	}
	if res.Outcome != OutcomeAlreadyPublished {
		t.Fatalf("unexpected outcome: %s", res.Outcome)
	}
}

func TestPublishHardFailureCarriesStderr(t *testing.T) {
	testlog.Start(t)
	runner := &fakeRunner{results: []runResult{{
		stderr:   []byte("error: unauthorized\n"),
		exitCode: 2,
		err:      errors.New("exit status 2"),
	}}}
	_, err := NewPublisher(testConfig(), runner, zerolog.Nop()).Publish(Target{Name: "base", Dir: "d"})
	if !errors.Is(err, ErrPublishFailed) {
		t.Fatalf("expected ErrPublishFailed, got %v", err)
	}
	var pubErr *PublishError
	if !errors.As(err, &pubErr) {
		t.Fatalf("expected *PublishError, got %T", err)
	}
	if pubErr.Package != "base" || pubErr.ExitCode != 2 || pubErr.Stderr != "error: unauthorized\n" {
		t.Fatalf("unexpected error detail: %+v", pubErr)
	}
	if !strings.Contains(err.Error(), "error: unauthorized") {
		t.Fatalf("stderr must be surfaced: %q", err.Error())
	}
}

func TestPublishMarkerOnStdoutIsNotASkip(t *testing.T) {
	testlog.Start(t)
	runner := &fakeRunner{results: []runResult{{
		stdout:   []byte("already exists"),
		exitCode: 1,
		err:      errors.New("exit status 1"),
	}}}
	if _, err := NewPublisher(testConfig(), runner, zerolog.Nop()).Publish(Target{Name: "base", Dir: "d"}); !errors.Is(err, ErrPublishFailed) {
		t.Fatalf("expected failure, got %v", err)
	}
}

func TestPublishMissingTool(t *testing.T) {
	testlog.Start(t)
	runner := &fakeRunner{results: []runResult{{exitCode: 127, err: errors.New("executable file not found")}}}
	_, err := NewPublisher(testConfig(), runner, zerolog.Nop()).Publish(Target{Name: "base", Dir: "d"})
	var pubErr *PublishError
	if !errors.As(err, &pubErr) || pubErr.ExitCode != 127 {
		t.Fatalf("expected exit 127 publish error, got %v", err)
	}
	if !strings.Contains(err.Error(), "executable file not found") {
		t.Fatalf("cause must be surfaced when stderr is empty: %q", err.Error())
	}
}

func TestCommandWithoutRegistry(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig()
	cfg.RegistryURL = ""
	cfg.Token = ""
	cmd := NewPublisher(cfg, &fakeRunner{}, zerolog.Nop()).Command(Target{Name: "x", Dir: "d"})
	if strings.Join(cmd.Args, " ") != "publish" || len(cmd.Env) != 0 {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}
