package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

// TestErrorCodesAreUnique parses the current package's source files,
// finds all vars initialized with an Error{...} composite literal,
// pulls out the Code field, and fails if there are duplicates.
func TestErrorCodesAreUnique(t *testing.T) {
	// Reflection can’t list all package-level vars,
	// so the only way is to scan the package’s AST

	fset := token.NewFileSet()

	// Parse all non-test .go files in this directory
	pkgs, err := parser.ParseDir(fset, ".", func(info fs.FileInfo) bool {
		name := info.Name()
		return strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go")
	}, 0)
	if err != nil {
		t.Fatalf("parse dir: %v", err)
	}

	// Find the current package (named "errors")
	pkg, ok := pkgs["errors"]
	if !ok {
		t.Fatalf("package 'errors' not found; got: %v", keys(pkgs))
	}

	type occ struct {
		varName string
		pos     token.Position
	}
	byCode := map[int][]occ{}

	for _, f := range pkg.Files {
		ast.Inspect(f, func(n ast.Node) bool {
			gd, ok := n.(*ast.GenDecl)
			if !ok || gd.Tok != token.VAR {
				return true
			}

			for _, spec := range gd.Specs {
				vs, ok := spec.(*ast.ValueSpec)
				if !ok {
					continue
				}
				// We expect Name = Value pairs.
				for i, name := range vs.Names {
					if i >= len(vs.Values) {
						continue
					}
					cl, ok := vs.Values[i].(*ast.CompositeLit)
					if !ok {
						continue
					}
					// Only consider composite literals of type Error (or pkg-qualified ...Error)
					if !isErrorComposite(cl) {
						continue
					}

					// Find Code: <int> inside the literal.
					if code, ok := extractCodeField(cl); ok {
						byCode[code] = append(byCode[code], occ{
							varName: name.Name,
							pos:     fset.Position(name.Pos()),
						})
					}
				}
			}
			return true
		})
	}

	var dups []string
	for code, occs := range byCode {
		if len(occs) > 1 {
			var refs []string
			for _, o := range occs {
				refs = append(refs, o.varName+"@"+o.pos.String())
			}
			dups = append(dups, strconv.Itoa(code)+": "+strings.Join(refs, ", "))
		}
	}
	if len(dups) > 0 {
		t.Fatalf("duplicate Error.Code values found:\n  %s", strings.Join(dups, "\n  "))
	}
}

// isErrorComposite returns true if the composite literal's type is named "Error"
// (either unqualified or selector-qualified, e.g., errors.Error).
func isErrorComposite(cl *ast.CompositeLit) bool {
	switch t := cl.Type.(type) {
	case *ast.Ident:
		return t.Name == "Error"
	case *ast.SelectorExpr:
		// e.g., somepkg.Error
		return t.Sel.Name == "Error"
	default:
		return false
	}
}

// extractCodeField looks for a "Code: <int>" entry in the composite literal.
func extractCodeField(cl *ast.CompositeLit) (int, bool) {
	for _, elt := range cl.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		keyIdent, ok := kv.Key.(*ast.Ident)
		if !ok || keyIdent.Name != "Code" {
			continue
		}
		if v, ok := kv.Value.(*ast.BasicLit); ok {
			if v.Kind == token.INT {
				// Accept 10, 0x..., with underscores.
				txt := strings.ReplaceAll(v.Value, "_", "")
				n, err := strconv.ParseInt(txt, 0, 32)
				if err == nil {
					return int(n), true
				}
			}
		}
	}
	return 0, false
}

func keys[M ~map[K]V, K comparable, V any](m M) []K {
	out := make([]K, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestWriteHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrCheckSubscription.WithCause(fmt.Errorf("mongo: connection refused")).Write(rec)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "connection refused") {
		t.Fatalf("internal cause leaked to the client: %s", body)
	}
	var resp struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error != "failed to check subscription" || resp.Code != 50010 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestWithKeepsCode(t *testing.T) {
	e := ErrMalformedBody.With("userId is required")
	if e.Code != ErrMalformedBody.Code || e.HTTPstatus != http.StatusBadRequest {
		t.Fatalf("unexpected error %+v", e)
	}
	if e.Error() != "invalid JSON request body: userId is required" {
		t.Fatalf("unexpected message %q", e.Error())
	}
	if !stderrors.Is(e, ErrMalformedBody.Err) {
		t.Fatal("expected wrapped error to match the base error")
	}
}

func TestWithDataAndLogLevel(t *testing.T) {
	data := []map[string]string{{"field": "userId", "message": "This field is required"}}
	e := ErrMalformedBody.WithData(data).WithLogLevel("error")
	if e.LogLevel != "error" || ErrMalformedBody.LogLevel != "" {
		t.Fatalf("unexpected log levels %q %q", e.LogLevel, ErrMalformedBody.LogLevel)
	}
	rec := httptest.NewRecorder()
	e.WithCause(fmt.Errorf("decoder failure")).Write(rec)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var body struct {
		Error string              `json:"error"`
		Code  int                 `json:"code"`
		Data  []map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Code != ErrMalformedBody.Code || len(body.Data) != 1 || body.Data[0]["field"] != "userId" {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "decoder failure") {
		t.Fatalf("cause leaked to the client: %s", rec.Body.String())
	}
}
