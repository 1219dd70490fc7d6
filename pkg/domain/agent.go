package domain

import (
	"fmt"
	"strings"
	"time"
)

// AgentStatus is the operational state of a registered agent. Persisted as an
// integer by the relational backend.
type AgentStatus int

const (
	AgentAvailable AgentStatus = iota
	AgentBusy
	AgentOffline
)

func (s AgentStatus) String() string {
	switch s {
	case AgentAvailable:
		return "AVAILABLE"
	case AgentBusy:
		return "BUSY"
	case AgentOffline:
		return "OFFLINE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// AgentCapabilities is what an agent declares about itself at registration.
type AgentCapabilities struct {
	AgentID   string `json:"agentId"`
	AgentType string `json:"agentType"`
	// Tools and Intents together form the agent's capability set; capability
	// lookups test exact membership against their union.
	Tools              []string          `json:"tools,omitempty"`
	Intents            []string          `json:"intents,omitempty"`
	MaxConcurrentTasks int               `json:"maxConcurrentTasks,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

func (c *AgentCapabilities) Validate() error {
	if c == nil {
		return fmt.Errorf("capabilities are nil")
	}
	if strings.TrimSpace(c.AgentID) == "" {
		return fmt.Errorf("agent id is required")
	}
	if c.MaxConcurrentTasks < 0 {
		return fmt.Errorf("max concurrent tasks must not be negative")
	}
	return nil
}

// Supports reports whether name is in the agent's tool set or intent set.
// Matching is exact-string; there is no fuzzy or semantic matching.
func (c *AgentCapabilities) Supports(name string) bool {
	for _, t := range c.Tools {
		if t == name {
			return true
		}
	}
	for _, i := range c.Intents {
		if i == name {
			return true
		}
	}
	return false
}

func (c *AgentCapabilities) Clone() *AgentCapabilities {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Tools = append([]string(nil), c.Tools...)
	cp.Intents = append([]string(nil), c.Intents...)
	cp.Metadata = cloneStringMap(c.Metadata)
	return &cp
}

// AgentInfo is the registry's derived record for one agent. LastHeartbeat is
// informational; staleness detection and eviction belong to the caller.
type AgentInfo struct {
	AgentID          string            `json:"agentId"`
	AgentType        string            `json:"agentType"`
	Status           AgentStatus       `json:"status"`
	Capabilities     AgentCapabilities `json:"capabilities"`
	LastHeartbeat    time.Time         `json:"lastHeartbeat"`
	CurrentTaskCount int               `json:"currentTaskCount"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

func (a *AgentInfo) Clone() *AgentInfo {
	if a == nil {
		return nil
	}
	cp := *a
	cp.Capabilities = *a.Capabilities.Clone()
	return &cp
}
