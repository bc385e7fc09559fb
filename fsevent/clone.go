package fsevent

// Clone performs the deep copy the deduplicator must make before an event
// crosses a batch boundary (spec.md §3 "Ownership & lifecycle"). The clone
// owns its own Id, ParentId, Name, Statx, symlink target and xattr tree;
// none of its fields alias the receiver's.
//
// Grounded on original_source/src/deduplicator.c's fsevent_clone, which
// dispatches on the event's type to call the matching
// rbh_fsevent_{upsert,link,unlink,delete,xattr,ns_xattr}_new constructor;
// here a single method suffices since Go doesn't need a v-table per variant.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	clone := &Event{
		Type:     e.Type,
		Id:       e.Id.Clone(),
		ParentId: e.ParentId.Clone(),
		Name:     e.Name,
		Statx:    e.Statx.Clone(),
		Xattrs:   e.Xattrs.Clone(),
	}
	if e.hasSymlink {
		clone.SetSymlinkTarget(e.SymlinkTarget)
	}
	return clone
}
