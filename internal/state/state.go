package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/sokinpui/mvref/internal/fs"
	"github.com/sokinpui/mvref/internal/model"
)

const (
	stateDirName  = ".mvref"
	stateFileName = "journal"
	BackupDir     = "backup"
)

// Operation represents a single change made by a run.
type Operation struct {
	Action model.FileAction
	// Path is the moved source, or the rewritten file.
	Path string
	// NewPath is the destination of a move.
	NewPath string
	// ContentHash is the hash of a rewritten file right after the write.
	ContentHash string
	// Backup names the compressed copy of the content before the write.
	Backup string
}

// HistoryEntry represents one complete run of the tool.
type HistoryEntry struct {
	Timestamp  int64
	Operations []Operation
}

// State represents the entire journal file.
type State struct {
	History []HistoryEntry
}

// Manager handles the lifecycle of the journal file and its backups.
type Manager struct {
	statePath string
	state     *State
	StateDir  string
	enc       *zstd.Encoder
	dec       *zstd.Decoder
}

// New creates and loads a journal manager. The journal lives at the root of
// the git repository containing dir, or in dir itself outside a repository.
func New(dir string) (*Manager, error) {
	rootDir, ok := fs.RepoRoot(dir)
	if !ok {
		rootDir = dir
	}

	stateDir := filepath.Join(rootDir, stateDirName)
	if err := os.MkdirAll(filepath.Join(stateDir, BackupDir), 0755); err != nil {
		return nil, fmt.Errorf("could not create state directory: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("could not create backup encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("could not create backup decoder: %w", err)
	}

	m := &Manager{
		statePath: filepath.Join(stateDir, stateFileName),
		StateDir:  stateDir,
		enc:       enc,
		dec:       dec,
	}
	if err := m.load(); err != nil {
		// An unreadable journal only costs the ability to undo older runs.
		m.state = &State{}
	}
	return m, nil
}

// Close releases the backup codec.
func (m *Manager) Close() {
	m.enc.Close()
	m.dec.Close()
}

// History returns the recorded runs, oldest first.
func (m *Manager) History() []HistoryEntry {
	return m.state.History
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			m.state = &State{}
			return nil
		}
		return err
	}

	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	m.state = &State{}

	for _, block := range strings.Split(content, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")

		ts, err := strconv.ParseInt(lines[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid journal: could not parse timestamp from '%s': %w", lines[0], err)
		}

		entry := HistoryEntry{Timestamp: ts}
		opLines := lines[1:]

		i := 0
		for i < len(opLines) {
			if i+3 > len(opLines) {
				return fmt.Errorf("invalid journal: incomplete operation record")
			}
			op := Operation{
				Action: model.FileAction(opLines[i]),
				Path:   opLines[i+1],
			}
			switch op.Action {
			case model.ActionMove:
				op.NewPath = opLines[i+2]
				i += 3
			case model.ActionRewrite:
				if i+4 > len(opLines) {
					return fmt.Errorf("invalid journal: incomplete rewrite record")
				}
				op.ContentHash = opLines[i+2]
				op.Backup = opLines[i+3]
				i += 4
			default:
				return fmt.Errorf("invalid journal: unknown action '%s'", op.Action)
			}
			entry.Operations = append(entry.Operations, op)
		}
		m.state.History = append(m.state.History, entry)
	}

	return nil
}

func (m *Manager) save() error {
	var blocks []string

	for _, entry := range m.state.History {
		var entryBuilder strings.Builder
		entryBuilder.WriteString(fmt.Sprintf("%d", entry.Timestamp))

		for _, op := range entry.Operations {
			entryBuilder.WriteString("\n" + string(op.Action) + "\n" + op.Path)
			switch op.Action {
			case model.ActionMove:
				entryBuilder.WriteString("\n" + op.NewPath)
			case model.ActionRewrite:
				entryBuilder.WriteString("\n" + op.ContentHash + "\n" + op.Backup)
			}
		}
		blocks = append(blocks, entryBuilder.String())
	}

	content := strings.Join(blocks, "\n\n")
	if err := os.WriteFile(m.statePath, []byte(content), 0644); err != nil {
		return fmt.Errorf("could not write journal: %w", err)
	}
	return nil
}

// Write adds a new run to the history. Runs without operations are not
// recorded.
func (m *Manager) Write(operations []Operation) error {
	if len(operations) == 0 {
		return nil
	}
	m.state.History = append(m.state.History, HistoryEntry{
		Timestamp:  time.Now().UTC().Unix(),
		Operations: operations,
	})
	return m.save()
}

// GetOperationsToUndo removes the most recent run from the history and
// returns its operations in the order they were performed.
func (m *Manager) GetOperationsToUndo() ([]Operation, error) {
	n := len(m.state.History)
	if n == 0 {
		return nil, nil
	}
	ops := m.state.History[n-1].Operations
	m.state.History = m.state.History[:n-1]
	// TODO: prune backups no longer referenced by any history entry.
	return ops, m.save()
}

// SaveBackup stores a compressed copy of content and returns its name.
// Identical content is stored once.
func (m *Manager) SaveBackup(content []byte) (string, error) {
	name := fs.HashBytes(content) + ".zst"
	path := filepath.Join(m.StateDir, BackupDir, name)
	if _, err := os.Stat(path); err == nil {
		return name, nil
	}
	if err := os.WriteFile(path, m.enc.EncodeAll(content, nil), 0644); err != nil {
		return "", fmt.Errorf("could not write backup: %w", err)
	}
	return name, nil
}

// ReadBackup returns the content stored under name.
func (m *Manager) ReadBackup(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(m.StateDir, BackupDir, name))
	if err != nil {
		return nil, fmt.Errorf("could not read backup: %w", err)
	}
	content, err := m.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("corrupt backup %s: %w", name, err)
	}
	return content, nil
}
