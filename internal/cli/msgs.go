package cli

// Command descriptions
const (
	MsgRootShort       = "Find the files an application leaves behind"
	MsgFindShort       = "List leftovers of an application"
	MsgOrphansShort    = "Manage files recorded for an application"
	MsgOrphansAdd      = "Record files that belong to an application"
	MsgOrphansList     = "List recorded applications and their files"
	MsgOrphansRemove   = "Forget the files recorded for an application"
	MsgConditionsShort = "Show the per-application matching conditions"
	MsgVersionShort    = "Print version information"
)

// Status messages
const (
	MsgSearching      = "Searching for leftovers of %s"
	MsgQueryingIndex  = "Querying Spotlight for %s"
	MsgFoundFormat    = "Found %d items"
	MsgRecordedFormat = "Recorded %d files for %s\n"
	MsgRemovedFormat  = "Forgot files recorded for %s\n"
)
