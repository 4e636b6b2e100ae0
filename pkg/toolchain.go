package tools

import "fmt"

// Tool is one framework plugin. The host runner calls Initialise once,
// Execute once per event and Finalise once, in registration order.
type Tool interface {
	Name() string
	Initialise(config Configuration, data *DataModel) error
	Execute(data *DataModel) error
	Finalise() error
}

// ToolChain drives a sequence of tools the way the host framework
// does: strictly single-threaded, event by event.
type ToolChain struct {
	tools  []Tool
	config Configuration
	data   *DataModel

	EventsProcessed int
	EventsDiscarded int
}

func NewToolChain(config Configuration, data *DataModel, tools ...Tool) *ToolChain {
	return &ToolChain{
		tools:  tools,
		config: config,
		data:   data,
	}
}

// Initialise runs every tool's Initialise. The first failure aborts
// the run.
func (c *ToolChain) Initialise() error {
	for _, tool := range c.tools {
		if c.config.Verbosity > 0 {
			logger.Info(fmt.Sprintf("Initialising tool %s", tool.Name()), "toolchain")
		}
		if err := tool.Initialise(c.config, c.data); err != nil {
			return fmt.Errorf("tool %s failed to initialise: %w", tool.Name(), err)
		}
	}
	return nil
}

// Execute runs one event through every tool. A tool error or panic
// discards the event and the chain keeps running; the returned error
// reports what went wrong with the discarded event.
func (c *ToolChain) Execute() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool chain recovered from panic: %v", r)
			c.EventsDiscarded++
		}
	}()

	for _, tool := range c.tools {
		if toolErr := tool.Execute(c.data); toolErr != nil {
			c.EventsDiscarded++
			return fmt.Errorf("tool %s failed: %w", tool.Name(), toolErr)
		}
	}
	c.EventsProcessed++
	return nil
}

// Finalise runs every tool's Finalise and reports the errors together
// so one failing tool does not keep another from closing its output.
func (c *ToolChain) Finalise() error {
	var errs []error
	for _, tool := range c.tools {
		if err := tool.Finalise(); err != nil {
			errs = append(errs, fmt.Errorf("tool %s failed to finalise: %w", tool.Name(), err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("finalise errors: %v", errs)
	}
	return nil
}
