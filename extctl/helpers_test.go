package extctl

import "github.com/hazyhaar/extswitch/profiles"

func profileWithDisable(id string, extensionIDs ...string) *profiles.ProfileGroup {
	p := &profiles.ProfileGroup{ID: id, Name: id, Enabled: true}
	for _, ext := range extensionIDs {
		p.ExtensionStates = append(p.ExtensionStates, profiles.ExtensionStateConfig{
			ExtensionID: ext, TargetState: profiles.TargetDisable,
		})
	}
	return p
}
