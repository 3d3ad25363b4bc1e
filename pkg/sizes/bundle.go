package sizes

import (
	"context"
	"debug/macho"
	"io"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/remnant/pkg/plist"
	"github.com/arthur-debert/remnant/pkg/types"
)

func infoPlist(ctx context.Context, fsys types.FS, decoder plist.Decoder, bundlePath string) (plist.Dict, bool) {
	data, err := fsys.ReadFile(filepath.Join(bundlePath, "Contents", "Info.plist"))
	if err != nil {
		return nil, false
	}
	dict, err := decoder.Decode(ctx, data)
	if err != nil {
		return nil, false
	}
	return dict, true
}

// Icon returns the icon file of an application bundle, or "" for anything
// that is not a bundle or declares no icon.
func Icon(ctx context.Context, fsys types.FS, decoder plist.Decoder, path string) string {
	if !strings.EqualFold(filepath.Ext(path), ".app") {
		return ""
	}
	dict, ok := infoPlist(ctx, fsys, decoder, path)
	if !ok {
		return ""
	}
	name := dict.String("CFBundleIconFile")
	if name == "" {
		return ""
	}
	if filepath.Ext(name) == "" {
		name += ".icns"
	}
	icon := filepath.Join(path, "Contents", "Resources", name)
	if _, err := fsys.Stat(icon); err != nil {
		return ""
	}
	return icon
}

// Architecture reports the CPU architecture of a bundle's main executable
func Architecture(ctx context.Context, fsys types.FS, decoder plist.Decoder, bundlePath string) types.Arch {
	dict, ok := infoPlist(ctx, fsys, decoder, bundlePath)
	if !ok {
		return types.ArchUnknown
	}
	exe := dict.String("CFBundleExecutable")
	if exe == "" {
		return types.ArchUnknown
	}
	f, err := fsys.Open(filepath.Join(bundlePath, "Contents", "MacOS", exe))
	if err != nil {
		return types.ArchUnknown
	}
	defer f.Close()
	return ArchOf(f)
}

// ArchOf classifies a Mach-O image. Only the headers are read.
func ArchOf(r io.ReaderAt) types.Arch {
	if fat, err := macho.NewFatFile(r); err == nil {
		defer fat.Close()
		if len(fat.Arches) > 1 {
			return types.ArchUniversal
		}
		if len(fat.Arches) == 1 {
			return cpuArch(fat.Arches[0].Cpu)
		}
		return types.ArchUnknown
	}

	f, err := macho.NewFile(r)
	if err != nil {
		return types.ArchUnknown
	}
	defer f.Close()
	return cpuArch(f.Cpu)
}

func cpuArch(cpu macho.Cpu) types.Arch {
	switch cpu {
	case macho.CpuArm64:
		return types.ArchARM64
	case macho.CpuAmd64:
		return types.ArchX86_64
	default:
		return types.ArchUnknown
	}
}
