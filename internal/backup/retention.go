package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	backupPrefix = "cogna-backup-"
	// nameTimeLayout is the timestamp GenerateBackupPath embeds in file names.
	nameTimeLayout = "20060102-150405"
)

// BackupInfo describes one backup file in a backup directory.
type BackupInfo struct {
	Path      string
	Size      int64
	CreatedAt time.Time
	Version   int
	// Networks lists the network names the backup holds. It is empty when
	// the payload could not be read.
	Networks        []string
	NeuronCount     int
	ConnectionCount int
	Checksum        string
}

// RetentionPolicy selects the backups to keep from a newest-first list.
type RetentionPolicy interface {
	Apply(backups []BackupInfo) (keep []BackupInfo)
}

// CountPolicy keeps the MaxCount newest backups.
type CountPolicy struct {
	MaxCount int
}

func (p *CountPolicy) Apply(backups []BackupInfo) []BackupInfo {
	return backups[:min(len(backups), max(p.MaxCount, 0))]
}

// AgePolicy keeps backups taken within MaxAge.
type AgePolicy struct {
	MaxAge time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

func (p *AgePolicy) Apply(backups []BackupInfo) []BackupInfo {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	cutoff := now().Add(-p.MaxAge)

	var keep []BackupInfo
	for _, b := range backups {
		if b.CreatedAt.After(cutoff) {
			keep = append(keep, b)
		}
	}
	return keep
}

// SizePolicy keeps the newest backups whose combined size fits in
// MaxTotalBytes. The newest backup is kept even when it alone is larger.
type SizePolicy struct {
	MaxTotalBytes int64
}

func (p *SizePolicy) Apply(backups []BackupInfo) []BackupInfo {
	var total int64
	for i, b := range backups {
		total += b.Size
		if total > p.MaxTotalBytes && i > 0 {
			return backups[:i]
		}
	}
	return backups
}

// CompositePolicy keeps a backup when any of its policies keeps it.
type CompositePolicy struct {
	Policies []RetentionPolicy
}

func (p *CompositePolicy) Apply(backups []BackupInfo) []BackupInfo {
	kept := make(map[string]bool)
	for _, policy := range p.Policies {
		for _, b := range policy.Apply(backups) {
			kept[b.Path] = true
		}
	}
	return filterKept(backups, kept)
}

func filterKept(backups []BackupInfo, kept map[string]bool) []BackupInfo {
	var result []BackupInfo
	for _, b := range backups {
		if kept[b.Path] {
			result = append(result, b)
		}
	}
	return result
}

// ListBackups scans dir for cogna backups, newest first. A missing
// directory holds no backups.
//
// A backup is dated by its V2 header, then by the created_at of a V1
// payload, then by the timestamp in its file name, and finally by its
// modification time.
func ListBackups(dir string) ([]BackupInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), backupPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, describeBackup(filepath.Join(dir, e.Name()), info))
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if !backups[i].CreatedAt.Equal(backups[j].CreatedAt) {
			return backups[i].CreatedAt.After(backups[j].CreatedAt)
		}
		return filepath.Base(backups[i].Path) > filepath.Base(backups[j].Path)
	})
	return backups, nil
}

func describeBackup(path string, info os.FileInfo) BackupInfo {
	bi := BackupInfo{Path: path, Size: info.Size()}

	version, err := DetectFormat(path)
	if err == nil {
		bi.Version = version
	}
	switch bi.Version {
	case FormatV2:
		if header, err := ReadV2Header(path); err == nil {
			bi.CreatedAt = header.CreatedAt
			bi.Networks = header.Networks
			bi.NeuronCount = header.NeuronCount
			bi.ConnectionCount = header.ConnectionCount
			bi.Checksum = header.Checksum
		}
	case FormatV1:
		if b, err := ReadV1(path); err == nil {
			bi.CreatedAt = b.CreatedAt
			bi.Networks = b.NetworkNames()
			bi.NeuronCount = b.NeuronCount()
			bi.ConnectionCount = b.ConnectionCount()
		}
	}

	if bi.CreatedAt.IsZero() {
		bi.CreatedAt = nameTime(filepath.Base(path))
	}
	if bi.CreatedAt.IsZero() {
		bi.CreatedAt = info.ModTime()
	}
	return bi
}

// nameTime parses the timestamp out of a cogna-backup-YYYYMMDD-HHMMSS
// file name, or returns the zero time.
func nameTime(name string) time.Time {
	stamp := strings.TrimPrefix(name, backupPrefix)
	if len(stamp) < len(nameTimeLayout) {
		return time.Time{}
	}
	t, err := time.Parse(nameTimeLayout, stamp[:len(nameTimeLayout)])
	if err != nil {
		return time.Time{}
	}
	return t
}

// ApplyRetention deletes the backups in dir that policy does not keep and
// returns their paths.
//
// The newest backup holding a network is never deleted while no kept
// backup holds that network, so pruning cannot drop the last copy of a
// network.
func ApplyRetention(dir string, policy RetentionPolicy) (deleted []string, err error) {
	backups, err := ListBackups(dir)
	if err != nil {
		return nil, err
	}

	kept := make(map[string]bool)
	for _, b := range policy.Apply(backups) {
		kept[b.Path] = true
	}
	keepLastCopies(backups, kept)

	for _, b := range backups {
		if kept[b.Path] {
			continue
		}
		if err := os.Remove(b.Path); err != nil {
			return deleted, fmt.Errorf("removing %s: %w", filepath.Base(b.Path), err)
		}
		deleted = append(deleted, b.Path)
	}
	return deleted, nil
}

// keepLastCopies marks the newest backup of every network that kept
// would otherwise lose.
func keepLastCopies(backups []BackupInfo, kept map[string]bool) {
	covered := make(map[string]bool)
	for _, b := range backups {
		if kept[b.Path] {
			for _, name := range b.Networks {
				covered[name] = true
			}
		}
	}
	for _, b := range backups {
		for _, name := range b.Networks {
			if !covered[name] {
				kept[b.Path] = true
				for _, n := range b.Networks {
					covered[n] = true
				}
				break
			}
		}
	}
}

// durationUnits extends time.ParseDuration with day and week suffixes.
var durationUnits = map[string]time.Duration{
	"d": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
}

// ParseDuration parses a retention age such as "30d", "2w" or "720h".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration string")
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	for suffix, unit := range durationUnits {
		num, ok := strings.CutSuffix(s, suffix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(num)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration: %q", s)
		}
		return time.Duration(n) * unit, nil
	}
	return 0, fmt.Errorf("invalid duration: %q", s)
}

// ParseSize parses a retention size such as "100MB", "1 GiB" or "500kB".
func ParseSize(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, fmt.Errorf("empty size string")
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size: %q: %w", s, err)
	}
	return int64(n), nil
}
