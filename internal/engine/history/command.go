package history

import (
	"fmt"
)

// Command represents an edit that can be executed and undone against a
// recorder's document.
type Command interface {
	// Execute performs the command and returns an error if it fails.
	Execute(r *Recorder) error

	// Undo reverses the command and returns an error if it fails.
	Undo(r *Recorder) error

	// Description returns a human-readable description of the command.
	Description() string
}

// RecordedCommand replays operations captured by a Recorder.
type RecordedCommand struct {
	Name       string
	Operations OperationList
}

// NewRecordedCommand creates a command from operations that have already
// been applied.
func NewRecordedCommand(name string, ops OperationList) *RecordedCommand {
	return &RecordedCommand{Name: name, Operations: ops}
}

// Execute applies the operations again.
func (c *RecordedCommand) Execute(r *Recorder) error {
	if err := r.Replay(c.Operations); err != nil {
		return fmt.Errorf("redo %s: %w", c.Description(), err)
	}
	return nil
}

// Undo applies the inverse operations in reverse order.
func (c *RecordedCommand) Undo(r *Recorder) error {
	if err := r.Replay(c.Operations.Invert()); err != nil {
		return fmt.Errorf("undo %s: %w", c.Description(), err)
	}
	return nil
}

// Description returns a human-readable description.
func (c *RecordedCommand) Description() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Operations) == 1 {
		return c.Operations[0].Kind.String()
	}
	return fmt.Sprintf("%d operations", len(c.Operations))
}

func (c *RecordedCommand) operationCount() int {
	return len(c.Operations)
}

// FuncCommand runs an edit function through the recorder the first time it
// executes and replays the recorded operations afterwards.
type FuncCommand struct {
	Name string
	Fn   func() error

	ops  OperationList
	done bool
}

// NewFuncCommand creates a command from an edit function. The function must
// make its changes through the recorder passed to Execute.
func NewFuncCommand(name string, fn func() error) *FuncCommand {
	return &FuncCommand{Name: name, Fn: fn}
}

// Execute runs the function, or replays its operations on redo. A failed
// first run is rolled back.
func (c *FuncCommand) Execute(r *Recorder) error {
	if c.done {
		return r.Replay(c.ops)
	}
	// Operations recorded before this command belong to someone else.
	prior := r.Take()
	err := c.Fn()
	ops := r.Take()
	r.ops = prior
	if err != nil {
		if rbErr := r.Replay(ops.Invert()); rbErr != nil {
			return fmt.Errorf("%s: %w (rollback failed: %v)", c.Description(), err, rbErr)
		}
		return err
	}
	c.ops = ops
	c.done = true
	return nil
}

// Undo applies the inverse of the recorded operations.
func (c *FuncCommand) Undo(r *Recorder) error {
	return r.Replay(c.ops.Invert())
}

// Description returns the command name.
func (c *FuncCommand) Description() string {
	if c.Name != "" {
		return c.Name
	}
	return "edit"
}

func (c *FuncCommand) operationCount() int {
	return len(c.ops)
}

// CompoundCommand groups multiple commands as one undo unit.
type CompoundCommand struct {
	Name     string
	Commands []Command
}

// NewCompoundCommand creates a new compound command.
func NewCompoundCommand(name string, commands ...Command) *CompoundCommand {
	return &CompoundCommand{
		Name:     name,
		Commands: commands,
	}
}

// Execute runs all commands in order.
func (c *CompoundCommand) Execute(r *Recorder) error {
	for i, cmd := range c.Commands {
		if err := cmd.Execute(r); err != nil {
			// On error, try to undo what we've done
			for j := i - 1; j >= 0; j-- {
				_ = c.Commands[j].Undo(r)
			}
			return fmt.Errorf("compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Undo reverses all commands in reverse order.
func (c *CompoundCommand) Undo(r *Recorder) error {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		if err := c.Commands[i].Undo(r); err != nil {
			return fmt.Errorf("undo compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Description returns the compound command's name.
func (c *CompoundCommand) Description() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Commands) == 1 {
		return c.Commands[0].Description()
	}
	return fmt.Sprintf("%d commands", len(c.Commands))
}

// Add adds a command to the compound command.
func (c *CompoundCommand) Add(cmd Command) {
	c.Commands = append(c.Commands, cmd)
}

// IsEmpty returns true if the compound command has no commands.
func (c *CompoundCommand) IsEmpty() bool {
	return len(c.Commands) == 0
}

func (c *CompoundCommand) operationCount() int {
	n := 0
	for _, cmd := range c.Commands {
		n += operationCount(cmd)
	}
	return n
}

type counter interface {
	operationCount() int
}

func operationCount(cmd Command) int {
	if c, ok := cmd.(counter); ok {
		return c.operationCount()
	}
	return 0
}
