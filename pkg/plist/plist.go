// Package plist decodes macOS property lists.
//
// XML property lists are parsed directly. Binary property lists are first
// converted to XML with plutil, which ships with every macOS install.
package plist

import (
	"bytes"
	"context"
	"encoding/base64"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/arthur-debert/remnant/pkg/errors"
	"github.com/arthur-debert/remnant/pkg/logging"
	"github.com/beevik/etree"
)

// binaryMagic prefixes every binary property list
var binaryMagic = []byte("bplist")

// convertTimeout bounds a single plutil invocation
const convertTimeout = 5 * time.Second

// Dict is a decoded property list dictionary. Values are string, int64,
// float64, bool, time.Time, []byte, []interface{} or Dict.
type Dict map[string]interface{}

// String returns the string stored under key, or "" when absent or of
// another type.
func (d Dict) String(key string) string {
	if s, ok := d[key].(string); ok {
		return s
	}
	return ""
}

// Bool returns the boolean stored under key
func (d Dict) Bool(key string) bool {
	b, _ := d[key].(bool)
	return b
}

// Has reports whether key is present
func (d Dict) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Converter turns a binary property list into its XML form
type Converter interface {
	ToXML(ctx context.Context, data []byte) ([]byte, error)
}

// Plutil converts binary plists by piping them through `plutil -convert xml1`
type Plutil struct{}

// ToXML implements Converter
func (Plutil) ToXML(ctx context.Context, data []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, convertTimeout)
	defer cancel()

	args := []string{"-convert", "xml1", "-o", "-", "-"}
	logging.LogCommand(logging.GetLogger("plist"), "plutil", args)
	cmd := exec.CommandContext(ctx, "plutil", args...)
	cmd.Stdin = bytes.NewReader(data)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrapf(err, errors.ErrPlistConvert, "plutil timeout after %v", convertTimeout)
		}
		return nil, errors.Wrap(err, errors.ErrPlistConvert, "plutil failed").
			WithDetail("stderr", strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Decoder decodes property lists, delegating binary ones to a Converter
type Decoder struct {
	Converter Converter
}

// Decode decodes data with the default plutil converter
func Decode(ctx context.Context, data []byte) (Dict, error) {
	return Decoder{Converter: Plutil{}}.Decode(ctx, data)
}

// IsBinary reports whether data is a binary property list
func IsBinary(data []byte) bool {
	return bytes.HasPrefix(data, binaryMagic)
}

// Decode parses data and returns its top level dictionary
func (d Decoder) Decode(ctx context.Context, data []byte) (Dict, error) {
	if IsBinary(data) {
		if d.Converter == nil {
			return nil, errors.New(errors.ErrPlistConvert, "binary property list and no converter configured")
		}
		xml, err := d.Converter.ToXML(ctx, data)
		if err != nil {
			return nil, err
		}
		data = xml
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Wrap(err, errors.ErrPlistParse, "invalid XML property list")
	}

	root := doc.SelectElement("plist")
	if root == nil {
		return nil, errors.New(errors.ErrPlistParse, "missing plist root element")
	}

	children := root.ChildElements()
	if len(children) != 1 {
		return nil, errors.Newf(errors.ErrPlistParse, "plist root has %d values, want 1", len(children))
	}

	value, err := decodeValue(children[0])
	if err != nil {
		return nil, err
	}

	dict, ok := value.(Dict)
	if !ok {
		return nil, errors.Newf(errors.ErrPlistParse, "top level value is <%s>, want <dict>", children[0].Tag)
	}
	return dict, nil
}

func decodeValue(el *etree.Element) (interface{}, error) {
	switch el.Tag {
	case "dict":
		return decodeDict(el)
	case "array":
		items := make([]interface{}, 0, len(el.ChildElements()))
		for _, child := range el.ChildElements() {
			v, err := decodeValue(child)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case "string":
		return el.Text(), nil
	case "integer":
		n, err := strconv.ParseInt(strings.TrimSpace(el.Text()), 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrPlistParse, "invalid <integer>")
		}
		return n, nil
	case "real":
		f, err := strconv.ParseFloat(strings.TrimSpace(el.Text()), 64)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrPlistParse, "invalid <real>")
		}
		return f, nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "date":
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(el.Text()))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrPlistParse, "invalid <date>")
		}
		return ts, nil
	case "data":
		raw := strings.Join(strings.Fields(el.Text()), "")
		b, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrPlistParse, "invalid <data>")
		}
		return b, nil
	default:
		return nil, errors.Newf(errors.ErrPlistParse, "unsupported element <%s>", el.Tag)
	}
}

func decodeDict(el *etree.Element) (Dict, error) {
	dict := Dict{}
	children := el.ChildElements()
	for i := 0; i < len(children); i += 2 {
		key := children[i]
		if key.Tag != "key" {
			return nil, errors.Newf(errors.ErrPlistParse, "expected <key>, got <%s>", key.Tag)
		}
		if i+1 >= len(children) {
			return nil, errors.Newf(errors.ErrPlistParse, "key %q has no value", key.Text())
		}
		v, err := decodeValue(children[i+1])
		if err != nil {
			return nil, err
		}
		dict[key.Text()] = v
	}
	return dict, nil
}
