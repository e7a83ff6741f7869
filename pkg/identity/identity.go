package identity

import (
	"os"

	"github.com/benmeehan/netmon-agent/pkg/file"
)

// Identity holds the agent's unique identifier.
type Identity struct {
	AgentID string `json:"agent_id,omitempty"`
}

// AgentInfoInterface defines methods for managing the persisted agent identity.
type AgentInfoInterface interface {
	LoadAgentInfo() error
	SaveAgentID(agentID string) error
	GetAgentID() string
}

// AgentInfo manages the agent identity and its associated file operations.
type AgentInfo struct {
	AgentInfoFile string
	Identity      Identity
	fileOps       file.FileOperations
}

// NewAgentInfo initializes a new AgentInfo instance.
func NewAgentInfo(filePath string, fileOps file.FileOperations) AgentInfoInterface {
	return &AgentInfo{
		AgentInfoFile: filePath,
		fileOps:       fileOps,
		Identity:      Identity{},
	}
}

// LoadAgentInfo reads the persisted identity from the file and populates the
// Identity field. A missing file is not an error, the agent simply has no
// saved identity yet.
func (a *AgentInfo) LoadAgentInfo() error {
	err := a.fileOps.ReadJsonFile(a.AgentInfoFile, &a.Identity)
	if err != nil {
		if os.IsNotExist(err) {
			a.Identity = Identity{}
			return nil
		}
		return err
	}

	return nil
}

// GetAgentID returns the current agent ID.
func (a *AgentInfo) GetAgentID() string {
	return a.Identity.AgentID
}

// SaveAgentID updates the agent ID in the Identity field and writes it back to
// the file.
func (a *AgentInfo) SaveAgentID(agentID string) error {
	a.Identity.AgentID = agentID
	return a.fileOps.WriteJsonFile(a.AgentInfoFile, a.Identity)
}
