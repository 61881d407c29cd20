package models

// Direction selects which way files flow between the device and the local tree.
type Direction string

const (
	DirectionPull Direction = "pull"
	DirectionPush Direction = "push"
)

// Statuses recorded per file in the run manifest.
const (
	StatusPending     = "pending"
	StatusCopied      = "copied"
	StatusOverwritten = "overwritten"
	StatusSkipped     = "skipped"
	StatusFailed      = "failed"
)

// Config holds the settings for one synchronization run.
type Config struct {
	Device      string   // adb serial, empty selects the default device
	AdbPath     string   // bridge executable, usually just "adb"
	LocalRoot   string   // local destination tree
	RemoteRoots []string // fixed remote roots; empty means discover from the device
	Direction   Direction
	CopyNewer   bool // overwrite local files when the remote copy is newer
	Quiet       bool
	SkipLog     bool   // write per-root skipped-path lists
	SkipLogDir  string // defaults to LocalRoot when empty
	BlockList   []string
}

// FileRecord is one enumerated remote file tracked in the run manifest.
type FileRecord struct {
	Root       string
	RemotePath string
	LocalPath  string
	Status     string
	Detail     string
	Bytes      int64
}
