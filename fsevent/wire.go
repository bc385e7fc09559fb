package fsevent

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

// Wire is the YAML-serializable shape of an Event, shared by source.File /
// source.Stdin (decoding) and sink.File (encoding) so both directions of
// the structured-text record framing described in SPEC_FULL.md §4.1.1 stay
// in lock-step. It uses yaml.MapSlice for Xattrs to preserve the
// deterministic insertion order Xattrs itself tracks (gopkg.in/yaml.v2's
// MapSlice is the library's own answer to ordered-map marshaling).
type Wire struct {
	Type          string        `yaml:"type"`
	Id            string        `yaml:"id"`
	ParentId      string        `yaml:"parent_id,omitempty"`
	Name          string        `yaml:"name,omitempty"`
	Statx         *WireStatx    `yaml:"statx,omitempty"`
	SymlinkTarget string        `yaml:"symlink_target,omitempty"`
	Xattrs        yaml.MapSlice `yaml:"xattrs,omitempty"`
}

// WireStatx is the YAML shape of a Statx record.
type WireStatx struct {
	Mask       uint32 `yaml:"mask"`
	Mode       uint16 `yaml:"mode,omitempty"`
	Nlink      uint32 `yaml:"nlink,omitempty"`
	UID        uint32 `yaml:"uid,omitempty"`
	GID        uint32 `yaml:"gid,omitempty"`
	AtimeSec   int64  `yaml:"atime_sec,omitempty"`
	AtimeNsec  uint32 `yaml:"atime_nsec,omitempty"`
	BtimeSec   int64  `yaml:"btime_sec,omitempty"`
	BtimeNsec  uint32 `yaml:"btime_nsec,omitempty"`
	CtimeSec   int64  `yaml:"ctime_sec,omitempty"`
	CtimeNsec  uint32 `yaml:"ctime_nsec,omitempty"`
	MtimeSec   int64  `yaml:"mtime_sec,omitempty"`
	MtimeNsec  uint32 `yaml:"mtime_nsec,omitempty"`
	Ino        uint64 `yaml:"ino,omitempty"`
	Size       uint64 `yaml:"size,omitempty"`
	Blocks     uint64 `yaml:"blocks,omitempty"`
	Blksize    uint32 `yaml:"blksize,omitempty"`
	Attributes uint64 `yaml:"attributes,omitempty"`
	RdevMajor  uint32 `yaml:"rdev_major,omitempty"`
	RdevMinor  uint32 `yaml:"rdev_minor,omitempty"`
	DevMajor   uint32 `yaml:"dev_major,omitempty"`
	DevMinor   uint32 `yaml:"dev_minor,omitempty"`
	MountID    uint64 `yaml:"mount_id,omitempty"`
}

func statxToWire(s *Statx) *WireStatx {
	if s == nil {
		return nil
	}
	return &WireStatx{
		Mask: uint32(s.Mask), Mode: s.Mode, Nlink: s.Nlink, UID: s.UID, GID: s.GID,
		AtimeSec: s.Atime.Sec, AtimeNsec: s.Atime.Nsec,
		BtimeSec: s.Btime.Sec, BtimeNsec: s.Btime.Nsec,
		CtimeSec: s.Ctime.Sec, CtimeNsec: s.Ctime.Nsec,
		MtimeSec: s.Mtime.Sec, MtimeNsec: s.Mtime.Nsec,
		Ino: s.Ino, Size: s.Size, Blocks: s.Blocks, Blksize: s.Blksize,
		Attributes: s.Attributes,
		RdevMajor:  s.Rdev.Major, RdevMinor: s.Rdev.Minor,
		DevMajor: s.Dev.Major, DevMinor: s.Dev.Minor,
		MountID: s.MountID,
	}
}

func wireToStatx(w *WireStatx) *Statx {
	if w == nil {
		return nil
	}
	return &Statx{
		Mask: StatxMask(w.Mask), Mode: w.Mode, Nlink: w.Nlink, UID: w.UID, GID: w.GID,
		Atime: Timespec{Sec: w.AtimeSec, Nsec: w.AtimeNsec},
		Btime: Timespec{Sec: w.BtimeSec, Nsec: w.BtimeNsec},
		Ctime: Timespec{Sec: w.CtimeSec, Nsec: w.CtimeNsec},
		Mtime: Timespec{Sec: w.MtimeSec, Nsec: w.MtimeNsec},
		Ino: w.Ino, Size: w.Size, Blocks: w.Blocks, Blksize: w.Blksize,
		Attributes: w.Attributes,
		Rdev: DevT{Major: w.RdevMajor, Minor: w.RdevMinor},
		Dev:  DevT{Major: w.DevMajor, Minor: w.DevMinor},
		MountID: w.MountID,
	}
}

// ToWire flattens an Event into its YAML wire shape.
func (e *Event) ToWire() (*Wire, error) {
	w := &Wire{
		Type:     e.Type.String(),
		Id:       e.Id.Hex(),
		ParentId: e.ParentId.Hex(),
		Name:     e.Name,
		Statx:    statxToWire(e.Statx),
	}
	if e.hasSymlink {
		w.SymlinkTarget = e.SymlinkTarget
	}
	for _, k := range e.Xattrs.Keys() {
		v, _ := e.Xattrs.Get(k)
		iv, err := valueToInterface(v)
		if err != nil {
			return nil, fmt.Errorf("encoding xattr %q: %w", k, err)
		}
		w.Xattrs = append(w.Xattrs, yaml.MapItem{Key: k, Value: iv})
	}
	return w, nil
}

// FromWire reconstructs an Event from its YAML wire shape.
func FromWire(w *Wire) (*Event, error) {
	typ, err := parseTypeName(w.Type)
	if err != nil {
		return nil, err
	}
	id, err := decodeHexId(w.Id)
	if err != nil {
		return nil, fmt.Errorf("decoding id: %w", err)
	}
	e := &Event{Type: typ, Id: id, Name: w.Name, Statx: wireToStatx(w.Statx), Xattrs: NewXattrs()}
	if w.ParentId != "" {
		pid, err := decodeHexId(w.ParentId)
		if err != nil {
			return nil, fmt.Errorf("decoding parent_id: %w", err)
		}
		e.ParentId = pid
	}
	if w.SymlinkTarget != "" {
		e.SetSymlinkTarget(w.SymlinkTarget)
	}
	for _, item := range w.Xattrs {
		key, ok := item.Key.(string)
		if !ok {
			return nil, fmt.Errorf("%w: non-string xattr key", ErrInvalidData)
		}
		v, err := interfaceToValue(item.Value)
		if err != nil {
			return nil, fmt.Errorf("decoding xattr %q: %w", key, err)
		}
		e.Xattrs.Set(key, v)
	}
	return e, nil
}

func parseTypeName(s string) (Type, error) {
	for t, name := range eventTypeNames {
		if name == s {
			return Type(t), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown event type %q", ErrInvalidData, s)
}
