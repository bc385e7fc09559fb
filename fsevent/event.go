// Package fsevent defines the abstract filesystem-event data model shared
// by every stage of the pipeline: the tagged-union Event, the opaque Id
// (and its Lustre FID codec), the Statx attribute record, and the xattr
// Value sum type. See spec.md §3.
package fsevent

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Next()-shaped methods across the pipeline
// (spec.md §7). They are wrapped with fmt.Errorf("...: %w", err) at each
// layer boundary and unwrapped with errors.Is/errors.As by the driver,
// mirroring the teacher's own wrapping idiom (backend/local/xattr.go:
// "failed to read xattr: %w").
var (
	// ErrEndOfData signals a clean, non-error end of a source or batch.
	ErrEndOfData = errors.New("end of data")
	// ErrInvalidData marks an event with an inconsistent enrichment
	// request, or one that still carries an unresolved request after
	// enrichment (spec.md §7).
	ErrInvalidData = errors.New("invalid data")
)

// Type is the fsevent tag (spec.md §3).
type Type int

const (
	Upsert Type = iota
	Link
	Unlink
	Delete
	Xattr
	NsXattr
)

// eventTypeNames mirrors the teacher's fs.Enum Choices() table convention
// (backend/local/local.go's timeTypeChoices), used here purely for
// stringification/logging, not for flag parsing.
var eventTypeNames = [...]string{
	Upsert:  "UPSERT",
	Link:    "LINK",
	Unlink:  "UNLINK",
	Delete:  "DELETE",
	Xattr:   "XATTR",
	NsXattr: "NS_XATTR",
}

func (t Type) String() string {
	if int(t) < 0 || int(t) >= len(eventTypeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return eventTypeNames[t]
}

// Event is the tagged-union fsevent of spec.md §3. Which fields are
// meaningful depends on Type:
//
//	UPSERT   Id, Statx (optional), SymlinkTarget (optional)
//	LINK     Id, ParentId, Name
//	UNLINK   Id, ParentId, Name
//	DELETE   Id
//	XATTR    Id, Xattrs
//	NS_XATTR Id, ParentId, Name, Xattrs
//
// Every variant also carries the generic Xattrs map, which may additionally
// hold an EnrichKey entry describing outstanding enrichment requests.
type Event struct {
	Type Type

	Id       Id
	ParentId Id
	Name     string

	Statx         *Statx
	SymlinkTarget string
	hasSymlink    bool

	Xattrs *Xattrs
}

// HasSymlinkTarget reports whether SymlinkTarget was explicitly set (as
// opposed to the zero value of an unset field).
func (e *Event) HasSymlinkTarget() bool { return e.hasSymlink }

// SetSymlinkTarget records a resolved symlink target on an UPSERT event.
func (e *Event) SetSymlinkTarget(target string) {
	e.SymlinkTarget = target
	e.hasSymlink = true
}

// NewUpsert builds an UPSERT event.
func NewUpsert(id Id, statx *Statx) *Event {
	return &Event{Type: Upsert, Id: id, Statx: statx, Xattrs: NewXattrs()}
}

// NewLink builds a LINK event.
func NewLink(id, parentID Id, name string) *Event {
	return &Event{Type: Link, Id: id, ParentId: parentID, Name: name, Xattrs: NewXattrs()}
}

// NewUnlink builds an UNLINK event.
func NewUnlink(id, parentID Id, name string) *Event {
	return &Event{Type: Unlink, Id: id, ParentId: parentID, Name: name, Xattrs: NewXattrs()}
}

// NewDelete builds a DELETE event.
func NewDelete(id Id) *Event {
	return &Event{Type: Delete, Id: id, Xattrs: NewXattrs()}
}

// NewXattr builds an XATTR event.
func NewXattr(id Id, xattrs *Xattrs) *Event {
	return &Event{Type: Xattr, Id: id, Xattrs: xattrs}
}

// NewNsXattr builds an NS_XATTR event.
func NewNsXattr(id, parentID Id, name string, xattrs *Xattrs) *Event {
	return &Event{Type: NsXattr, Id: id, ParentId: parentID, Name: name, Xattrs: xattrs}
}

// Validate checks the invariants of spec.md §3 that every event (regardless
// of its origin) must satisfy: a non-empty id, and non-empty names on
// LINK/UNLINK/NS_XATTR.
func (e *Event) Validate() error {
	if e.Id.Empty() {
		return fmt.Errorf("%w: event id is empty", ErrInvalidData)
	}
	switch e.Type {
	case Link, Unlink, NsXattr:
		if e.Name == "" {
			return fmt.Errorf("%w: %s event requires a non-empty name", ErrInvalidData, e.Type)
		}
	}
	return nil
}

// HasEnrichRequest reports whether the event still carries an unresolved
// rbh-fsevents enrichment request.
func (e *Event) HasEnrichRequest() bool {
	return e.Xattrs.Has(EnrichKey)
}
