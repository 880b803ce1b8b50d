package scenario

import (
	"encoding/json"
	"fmt"

	"github.com/zeebo/xxh3"
)

// Fingerprint identifies the fitting problem a scenario describes. Scenarios
// that differ only in name or description share a fingerprint.
func (s *Scenario) Fingerprint() string {
	c := *s
	c.Name, c.Description = "", ""
	if c.Padding == nil {
		p := c.PaddingOrDefault()
		c.Padding = &p
	}
	data, _ := json.Marshal(c)
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}
