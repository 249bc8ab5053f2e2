package config

// DefaultProfile is the foundry profile used when none is selected
const DefaultProfile = "default"

// FoundryConfig represents the parts of foundry.toml trebkit reads
type FoundryConfig struct {
	Profile      map[string]ProfileConfig `toml:"profile"`
	RpcEndpoints map[string]string        `toml:"rpc_endpoints"`
}

// ProfileConfig represents a profile's foundry configuration
type ProfileConfig struct {
	SrcPath    string   `toml:"src,omitempty"`
	OutPath    string   `toml:"out,omitempty"`
	LibPaths   []string `toml:"libs,omitempty"`
	ScriptPath string   `toml:"script,omitempty"`
}

// OutDir returns the artifact directory of profile, defaulting to "out"
func (c *FoundryConfig) OutDir(profile string) string {
	if c != nil {
		if p, ok := c.Profile[profile]; ok && p.OutPath != "" {
			return p.OutPath
		}
		if p, ok := c.Profile[DefaultProfile]; ok && p.OutPath != "" {
			return p.OutPath
		}
	}
	return "out"
}
