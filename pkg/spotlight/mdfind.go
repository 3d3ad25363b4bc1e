package spotlight

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/arthur-debert/remnant/pkg/errors"
	"github.com/arthur-debert/remnant/pkg/logging"
)

// MDFind queries Spotlight through the mdfind command
type MDFind struct {
	// Binary overrides the mdfind executable, mainly for tests
	Binary string
}

// Search implements Indexer. The process is killed when ctx is done.
func (m MDFind) Search(ctx context.Context, q Query) ([]string, error) {
	bin := m.Binary
	if bin == "" {
		bin = "mdfind"
	}

	args := []string{}
	if q.Scope != "" {
		args = append(args, "-onlyin", q.Scope)
	}
	args = append(args, Predicate(q))

	logging.LogCommand(logging.GetLogger("spotlight"), bin, args)
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), errors.ErrIndexTimeout, "mdfind cancelled")
		}
		return nil, errors.Wrap(err, errors.ErrIndexQuery, "mdfind failed").
			WithDetail("stderr", strings.TrimSpace(stderr.String()))
	}

	var paths []string
	sc := bufio.NewScanner(&stdout)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			paths = append(paths, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrIndexQuery, "cannot read mdfind output")
	}
	return paths, nil
}

// Predicate builds the metadata query: display name contains the app name
// or path contains the bundle id, case and diacritic insensitive.
func Predicate(q Query) string {
	var clauses []string
	if q.Name != "" {
		clauses = append(clauses, fmt.Sprintf(`kMDItemDisplayName == "*%s*"cd`, escape(q.Name)))
	}
	if q.BundleID != "" {
		clauses = append(clauses, fmt.Sprintf(`kMDItemPath == "*%s*"cd`, escape(q.BundleID)))
	}
	return strings.Join(clauses, " || ")
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, `*`, `\*`)
	return r.Replace(s)
}
