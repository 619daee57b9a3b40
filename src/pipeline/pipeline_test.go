package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onuc/src/ast"
	"onuc/src/environment"
	"onuc/src/types"
)

// fakeEnvironment records writes and command invocations instead of
// touching the real filesystem/linker, so pipeline wiring can be tested
// without a system clang install.
type fakeEnvironment struct {
	written map[string]string
	ran     [][]string
}

func newFakeEnvironment() *fakeEnvironment {
	return &fakeEnvironment{written: make(map[string]string)}
}

func (f *fakeEnvironment) ReadFile(string) (string, error) { return "", nil }
func (f *fakeEnvironment) WriteFile(path, contents string) error {
	f.written[path] = contents
	return nil
}
func (f *fakeEnvironment) WriteBinary(path string, data []byte) error {
	f.written[path] = string(data)
	return nil
}
func (f *fakeEnvironment) RunCommand(name string, args ...string) (string, error) {
	f.ran = append(f.ran, append([]string{name}, args...))
	return "", nil
}
func (f *fakeEnvironment) Log(environment.LogLevel, string, ...interface{}) {}

// helloProgram builds the hello_world sample (SPEC_FULL.md §8): a main
// behavior that emits a text literal.
func helloProgram() *ast.Program {
	return &ast.Program{
		Discourses: []ast.Discourse{
			&ast.Behavior{
				Header: ast.Header{Name: "main", ReturnType: types.Nothing},
				Body:   &ast.EmitExpr{Inner: &ast.TextLiteral{Value: "Hello, World!"}},
			},
		},
	}
}

func TestCompileStopsAfterAnalysis(t *testing.T) {
	env := newFakeEnvironment()
	p := New(env)

	res, err := p.Compile(helloProgram(), Options{StopAfter: StageAnalysis, HasStopAfter: true})
	require.NoError(t, err)
	require.NotNil(t, res.HIR)
	assert.Nil(t, res.MIR, "expected MIR lowering to be skipped")
	assert.Empty(t, env.written, "expected no files written before codegen/realization")
}

func TestCompileStopsAfterMIR(t *testing.T) {
	env := newFakeEnvironment()
	p := New(env)

	res, err := p.Compile(helloProgram(), Options{StopAfter: StageMIR, HasStopAfter: true})
	require.NoError(t, err)
	require.NotNil(t, res.MIR)
	assert.Empty(t, res.LLVMIR)
	assert.Len(t, res.MIR.Functions, 1)
	assert.Equal(t, "main", res.MIR.Functions[0].Name)
}

func TestCompileStopsAfterCodegenAndSkipsRealization(t *testing.T) {
	env := newFakeEnvironment()
	p := New(env)

	res, err := p.Compile(helloProgram(), Options{StopAfter: StageCodegen, HasStopAfter: true})
	require.NoError(t, err)
	assert.NotEmpty(t, res.LLVMIR)
	assert.Contains(t, res.LLVMIR, "define i32 @main(i32", "entry behavior must become the main(i32, i8*) -> i32 symbol")
	assert.Contains(t, res.LLVMIR, "ret i32 0", "C-entry Return must always yield i32 0")
	assert.Empty(t, env.written, "codegen must not trigger realization's file write")
	assert.Empty(t, env.ran)
}

func TestCompileRealizesWithoutStopAfter(t *testing.T) {
	env := newFakeEnvironment()
	p := New(env)

	_, err := p.Compile(helloProgram(), Options{Src: "/tmp/sample.onu"})
	require.NoError(t, err)

	require.Contains(t, env.written, "/tmp/sample.ll")
	assert.Contains(t, env.written["/tmp/sample.ll"], "onu_discourse")
	require.Len(t, env.ran, 1)
	assert.Equal(t, "clang", env.ran[0][0])
	assert.Contains(t, env.ran[0], "/tmp/sample.ll")
	assert.Contains(t, env.ran[0], "/tmp/sample_bin")
}

// sampleProgram mirrors the `sample` scenario (SPEC_FULL.md §8): a main
// behavior that emits the literal 10, by way of as-text (registered in
// registry.LoadCoreModule).
func sampleProgram() *ast.Program {
	return &ast.Program{
		Discourses: []ast.Discourse{
			&ast.Behavior{
				Header: ast.Header{Name: "main", ReturnType: types.Nothing},
				Body: &ast.EmitExpr{Inner: &ast.BehaviorCall{
					Name: "as-text",
					Args: []ast.Expr{&ast.IntLiteral{Value: 10}},
				}},
			},
		},
	}
}

func TestSampleScenarioEmitsConvertedInteger(t *testing.T) {
	env := newFakeEnvironment()
	p := New(env)

	res, err := p.Compile(sampleProgram(), Options{StopAfter: StageCodegen, HasStopAfter: true})
	require.NoError(t, err)
	assert.Contains(t, res.LLVMIR, "sprintf")
}

func TestStemOf(t *testing.T) {
	assert.Equal(t, "/tmp/sample", stemOf("/tmp/sample.onu"))
	assert.Equal(t, "noext", stemOf("noext"))
	assert.Equal(t, "a/b.c/d", stemOf("a/b.c/d"))
}
