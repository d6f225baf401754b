// Hub/hublet attachment — limited-capacity building links.
package building

import "fmt"

// CanAttach reports whether hublet may attach to hub, with the blocking
// reason when it cannot.
func CanAttach(hub, hublet *Instance) (bool, string) {
	if !hub.Definition.IsHub {
		return false, "target is not a hub"
	}
	if !hublet.Definition.IsHublet {
		return false, "attacher is not a hublet"
	}
	if hublet.HubID != nil {
		return false, "hublet already attached"
	}
	if len(hub.HubletIDs) >= hub.Definition.HubletCapacity {
		return false, "hub has no free slots"
	}
	if !hublet.Definition.AcceptsHubCategory(hub.Definition.Category) {
		return false, fmt.Sprintf("hub category %s not accepted", hub.Definition.Category)
	}
	return true, ""
}

// Attach links hublet to hub. Returns false (no mutation) when the
// attachment rules reject the pair.
func Attach(hub, hublet *Instance) bool {
	ok, _ := CanAttach(hub, hublet)
	if !ok {
		return false
	}
	id := hublet.ID
	hub.HubletIDs = append(hub.HubletIDs, id)
	hubID := hub.ID
	hublet.HubID = &hubID
	return true
}

// Detach removes hublet from its hub. Returns false when the hublet is
// not attached to the given hub.
//
// Removing a hub does not cascade here: its hublets keep their stale
// HubID and are orphaned until reattached. See DESIGN.md open questions.
func Detach(hub, hublet *Instance) bool {
	if hublet.HubID == nil || *hublet.HubID != hub.ID {
		return false
	}
	for i, id := range hub.HubletIDs {
		if id == hublet.ID {
			hub.HubletIDs = append(hub.HubletIDs[:i], hub.HubletIDs[i+1:]...)
			break
		}
	}
	hublet.HubID = nil
	return true
}
