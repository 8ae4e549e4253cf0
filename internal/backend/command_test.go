package backend

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"
	"testing"

	"github.com/seantiz/jsengine/internal/proc"
)

// fakeRunner records every command line and answers with canned output.
type fakeRunner struct {
	mu    sync.Mutex
	calls []string
	reply func(args []string) (proc.Output, error)
}

func (f *fakeRunner) run(_ context.Context, name string, args ...string) (proc.Output, error) {
	f.mu.Lock()
	f.calls = append(f.calls, strings.Join(append([]string{name}, args...), " "))
	f.mu.Unlock()
	if len(args) > 0 && args[len(args)-1] == "--version" {
		return proc.Output{Stdout: "v1.0"}, nil
	}
	if f.reply != nil {
		return f.reply(args)
	}
	return proc.Output{Stdout: "42"}, nil
}

func (f *fakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func fakeLookPath(file string) (string, error) {
	return "/usr/bin/" + file, nil
}

func missingLookPath(file string) (string, error) {
	return "", &exec.Error{Name: file, Err: exec.ErrNotFound}
}

func TestCommandLines(t *testing.T) {
	tests := []struct {
		name string
		new  func(Options) Backend
		want []string
	}{
		{
			name: NameSpiderMonkey,
			new:  NewSpiderMonkey,
			want: []string{
				"/usr/bin/js --version",
				"/usr/bin/js -e print(eval(unescape('1%2B1')))",
			},
		},
		{
			name: NameNode,
			new:  NewNode,
			want: []string{
				"/usr/bin/node --version",
				"/usr/bin/node -e console.log(eval(unescape('1%2B1')))",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fr := &fakeRunner{}
			b := tt.new(Options{Runner: fr.run, LookPath: fakeLookPath})

			if b.Name() != tt.name {
				t.Errorf("Name() = %q, want %q", b.Name(), tt.name)
			}
			res := b.Evaluate(context.Background(), "1+1")
			if res.Err != nil {
				t.Fatalf("Evaluate: %v", res.Err)
			}

			calls := fr.Calls()
			if len(calls) != len(tt.want) {
				t.Fatalf("calls = %q, want %q", calls, tt.want)
			}
			for i := range calls {
				if calls[i] != tt.want[i] {
					t.Errorf("call %d = %q, want %q", i, calls[i], tt.want[i])
				}
			}
		})
	}
}

func TestCommandBackendSetupRunsOnce(t *testing.T) {
	fr := &fakeRunner{}
	b := NewNode(Options{Runner: fr.run, LookPath: fakeLookPath})

	for i := 0; i < 3; i++ {
		b.Evaluate(context.Background(), "1")
	}

	var versions int
	for _, c := range fr.Calls() {
		if strings.HasSuffix(c, "--version") {
			versions++
		}
	}
	if versions != 1 {
		t.Errorf("version checks = %d, want 1", versions)
	}
}

func TestCommandBackendStderrIsContained(t *testing.T) {
	fr := &fakeRunner{reply: func([]string) (proc.Output, error) {
		return proc.Output{Stderr: "ReferenceError: x is not defined"}, nil
	}}
	b := NewSpiderMonkey(Options{Runner: fr.run, LookPath: fakeLookPath})

	res := b.Evaluate(context.Background(), "x")
	var se *StderrError
	if !errors.As(res.Err, &se) {
		t.Fatalf("Err = %v, want *StderrError", res.Err)
	}
	if se.Engine != NameSpiderMonkey || se.Stderr != "ReferenceError: x is not defined" {
		t.Errorf("StderrError = %+v", se)
	}
	if res.Output != "" {
		t.Errorf("Output = %q, want empty", res.Output)
	}
}

func TestCommandBackendStderrWarningKeepsOutput(t *testing.T) {
	const warning = "Picked up JAVA_TOOL_OPTIONS: -Xmx1g"
	fr := &fakeRunner{reply: func([]string) (proc.Output, error) {
		return proc.Output{Stdout: "42", Stderr: warning}, nil
	}}
	b := NewNode(Options{Runner: fr.run, LookPath: fakeLookPath})

	if err := b.Probe(context.Background()); err != nil {
		t.Errorf("Probe() = %v, want nil", err)
	}

	res := b.Evaluate(context.Background(), "23+19")
	if res.Err != nil {
		t.Errorf("Err = %v, want nil", res.Err)
	}
	if res.Output != "42" {
		t.Errorf("Output = %q, want %q", res.Output, "42")
	}
	if res.Stderr != warning {
		t.Errorf("Stderr = %q, want %q", res.Stderr, warning)
	}
}

func TestCommandBackendRetriesLookupUntilFound(t *testing.T) {
	var mu sync.Mutex
	installed := false
	lookPath := func(file string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if !installed {
			return missingLookPath(file)
		}
		return fakeLookPath(file)
	}

	fr := &fakeRunner{}
	reg, err := NewRegistry(NewNode(Options{Runner: fr.run, LookPath: lookPath}))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	if got := reg.Available(context.Background()); len(got) != 0 {
		t.Fatalf("Available before install = %d engines, want 0", len(got))
	}

	mu.Lock()
	installed = true
	mu.Unlock()

	got := reg.Available(context.Background())
	if len(got) != 1 || got[0].Name() != NameNode {
		t.Fatalf("Available after install = %v, want [node]", got)
	}

	reg.Available(context.Background())
	var versions int
	for _, c := range fr.Calls() {
		if strings.HasSuffix(c, "--version") {
			versions++
		}
	}
	if versions != 1 {
		t.Errorf("version checks = %d, want 1 once found", versions)
	}
}

func TestCommandBackendMissingExecutable(t *testing.T) {
	fr := &fakeRunner{}
	b := NewNode(Options{Runner: fr.run, LookPath: missingLookPath})

	res := b.Evaluate(context.Background(), "23+19")
	if !errors.Is(res.Err, ErrNotFound) {
		t.Errorf("Evaluate Err = %v, want ErrNotFound", res.Err)
	}
	if res.Output != "" {
		t.Errorf("Output = %q, want empty", res.Output)
	}
	if err := b.Probe(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Probe = %v, want ErrNotFound", err)
	}
	if calls := fr.Calls(); len(calls) != 0 {
		t.Errorf("spawned %q, want nothing", calls)
	}
}

func TestCommandBackendSpawnFailureIsContained(t *testing.T) {
	b := NewNode(Options{
		Runner:   proc.Run,
		LookPath: func(string) (string, error) { return "/nonexistent/jsengine/node", nil },
	})

	res := b.Evaluate(context.Background(), "23+19")
	if res.Err == nil {
		t.Fatal("expected contained error for unspawnable runtime")
	}
	if err := b.Probe(context.Background()); err == nil {
		t.Error("Probe succeeded for unspawnable runtime")
	}
}

func TestCommandBackendProbe(t *testing.T) {
	tests := []struct {
		name    string
		out     proc.Output
		wantErr bool
	}{
		{"smoke passes", proc.Output{Stdout: "42"}, false},
		{"wrong answer", proc.Output{Stdout: "41"}, true},
		{"stderr warning", proc.Output{Stdout: "42", Stderr: "warning"}, false},
		{"stderr only", proc.Output{Stderr: "SyntaxError"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fr := &fakeRunner{reply: func([]string) (proc.Output, error) { return tt.out, nil }}
			b := NewSpiderMonkey(Options{Runner: fr.run, LookPath: fakeLookPath})

			err := b.Probe(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Probe() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRhinoCommandLine(t *testing.T) {
	fr := &fakeRunner{}
	b := NewRhino(Options{RhinoJar: "/opt/rhino/js.jar"}).(*commandBackend)
	b.host = host{
		run:        fr.run,
		lookPath:   fakeLookPath,
		glob:       func(string) ([]string, error) { return nil, nil },
		exists:     func(p string) bool { return p == "/opt/rhino/js.jar" },
		executable: func() (string, error) { return "/srv/jsengine", nil },
	}

	if res := b.Evaluate(context.Background(), "1+1"); res.Err != nil {
		t.Fatalf("Evaluate: %v", res.Err)
	}

	want := "/usr/bin/java -cp /opt/rhino/js.jar org.mozilla.javascript.tools.shell.Main -e print(eval(unescape('1%2B1')))"
	calls := fr.Calls()
	if len(calls) != 1 || calls[0] != want {
		t.Errorf("calls = %q, want [%q]", calls, want)
	}
}

func TestFindRhinoJar(t *testing.T) {
	globbed := map[string][]string{
		"/usr/share/java*/js.jar":    {"/usr/share/java/js.jar"},
		"/usr/share/java*/rhino.jar": {"/usr/share/java-rhino/rhino.jar"},
	}

	tests := []struct {
		name       string
		configured string
		present    []string
		want       string
		wantErr    bool
	}{
		{"configured first", "/opt/js.jar", []string{"/opt/js.jar", "/usr/share/java/js.jar"}, "/opt/js.jar", false},
		{"configured missing", "/opt/js.jar", []string{"/usr/share/java/js.jar"}, "/usr/share/java/js.jar", false},
		{"rhino jar", "", []string{"/usr/share/java-rhino/rhino.jar", "js.jar"}, "/usr/share/java-rhino/rhino.jar", false},
		{"working directory", "", []string{"js.jar", "/srv/js.jar"}, "js.jar", false},
		{"next to executable", "", []string{"/srv/js.jar"}, "/srv/js.jar", false},
		{"none", "", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			present := make(map[string]bool)
			for _, p := range tt.present {
				present[p] = true
			}
			h := host{
				glob:       func(p string) ([]string, error) { return globbed[p], nil },
				exists:     func(p string) bool { return present[p] },
				executable: func() (string, error) { return "/srv/jsengine", nil },
			}

			got, err := findRhinoJar(h, tt.configured)
			if (err != nil) != tt.wantErr {
				t.Fatalf("findRhinoJar() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("findRhinoJar() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRhinoWithoutJavaIsNotFound(t *testing.T) {
	fr := &fakeRunner{}
	b := NewRhino(Options{Runner: fr.run, LookPath: missingLookPath})

	if err := b.Probe(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Probe = %v, want ErrNotFound", err)
	}
	if calls := fr.Calls(); len(calls) != 0 {
		t.Errorf("spawned %q, want nothing", calls)
	}
}

// Rhino output is returned exactly as decoded, without any re-encoding.
func TestDecodeRhinoReturnsDecodedText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"42", "42"},
		{"café", "café"},
		{"caf\xe9", "café"},
		{"\xbfqu\xe9?", "¿qué?"},
	}
	for _, tt := range tests {
		if got := decodeRhino(tt.in); got != tt.want {
			t.Errorf("decodeRhino(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRhinoDecodesLatin1Output(t *testing.T) {
	fr := &fakeRunner{reply: func([]string) (proc.Output, error) {
		return proc.Output{Stdout: "na\xefve"}, nil
	}}
	b := NewRhino(Options{}).(*commandBackend)
	b.host = host{
		run:        fr.run,
		lookPath:   fakeLookPath,
		glob:       func(string) ([]string, error) { return nil, nil },
		exists:     func(p string) bool { return p == "js.jar" },
		executable: func() (string, error) { return "", errors.New("unknown") },
	}

	res := b.Evaluate(context.Background(), "'naïve'")
	if res.Err != nil {
		t.Fatalf("Evaluate: %v", res.Err)
	}
	if res.Output != "naïve" {
		t.Errorf("Output = %q, want %q", res.Output, "naïve")
	}
}

func TestLocateJSC(t *testing.T) {
	h := host{exists: func(p string) bool { return p == jscPaths[1] }}
	inv, err := locateJSC(context.Background(), h)
	if err != nil {
		t.Fatalf("locateJSC: %v", err)
	}
	if inv.exe != jscPaths[1] {
		t.Errorf("exe = %q, want %q", inv.exe, jscPaths[1])
	}

	h.exists = func(string) bool { return false }
	if _, err := locateJSC(context.Background(), h); err == nil {
		t.Error("expected error when no jsc shell exists")
	}
}

func TestStandardOrder(t *testing.T) {
	want := []string{NameSpiderMonkey, NameGoja, NameNode, NameRhino}
	if onDarwin {
		want = append(want, NameJavaScriptCore)
	}

	got := Standard(Options{})
	if len(got) != len(want) {
		t.Fatalf("Standard() has %d backends, want %d", len(got), len(want))
	}
	for i, b := range got {
		if b.Name() != want[i] {
			t.Errorf("Standard()[%d] = %q, want %q", i, b.Name(), want[i])
		}
	}
}
