package sizes

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/arthur-debert/remnant/pkg/errors"
	"github.com/arthur-debert/remnant/pkg/logging"
)

const (
	attrPhysicalSize = "kMDItemPhysicalSize"
	attrLogicalSize  = "kMDItemLogicalSize"

	mdlsTimeout = 5 * time.Second
)

// Indexed holds the sizes an index knows for a path. An attribute the index
// has no value for is flagged as missing and must be measured.
type Indexed struct {
	Real       int64
	Logical    int64
	HasReal    bool
	HasLogical bool
}

// Complete reports whether both sizes are known
func (i Indexed) Complete() bool {
	return i.HasReal && i.HasLogical
}

// MetadataSource provides indexed sizes for a path
type MetadataSource interface {
	Sizes(ctx context.Context, path string) Indexed
}

// MDLS reads sizes from Spotlight metadata through the mdls command
type MDLS struct {
	// Binary overrides the mdls executable, mainly for tests
	Binary  string
	Timeout time.Duration
}

// Sizes implements MetadataSource with a single mdls call for both
// attributes. Failures leave both sizes missing.
func (m MDLS) Sizes(ctx context.Context, path string) Indexed {
	bin := m.Binary
	if bin == "" {
		bin = "mdls"
	}
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = mdlsTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{"-raw", "-name", attrPhysicalSize, "-name", attrLogicalSize, path}
	logger := logging.GetLogger("sizes")
	logging.LogCommand(logger, bin, args)

	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var mdErr error
		if ctx.Err() == context.DeadlineExceeded {
			mdErr = errors.Newf(errors.ErrMetadata, "mdls timeout after %v", timeout)
		} else {
			mdErr = errors.Wrap(err, errors.ErrMetadata, "mdls failed").
				WithDetail("stderr", strings.TrimSpace(stderr.String()))
		}
		logger.Debug().Err(mdErr).Str("path", path).Msg("No indexed sizes")
		return Indexed{}
	}
	return parseIndexed(stdout.String())
}

// parseIndexed splits raw mdls output. Values are NUL separated and follow
// the order of the -name arguments.
func parseIndexed(raw string) Indexed {
	var out Indexed
	values := strings.Split(raw, "\x00")
	if len(values) > 0 {
		out.Real, out.HasReal = parseValue(values[0])
	}
	if len(values) > 1 {
		out.Logical, out.HasLogical = parseValue(values[1])
	}
	return out
}

// parseValue parses one raw mdls value; "(null)" means the attribute is unset
func parseValue(raw string) (int64, bool) {
	value := strings.TrimSpace(raw)
	if value == "" || value == "(null)" {
		return 0, false
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// NoMetadata always defers to the filesystem walk
type NoMetadata struct{}

// Sizes implements MetadataSource
func (NoMetadata) Sizes(context.Context, string) Indexed {
	return Indexed{}
}
