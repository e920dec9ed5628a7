package main

import (
	"fmt"

	"github.com/Jacobbrewer1/meiple/cmd/bot/config"
	"github.com/bwmarrin/discordgo"
)

// Capability is a permission set a command requires, expressed over Discord
// permission bits.
type Capability int64

const (
	// CapabilityAdministrator is required by the configuration commands.
	CapabilityAdministrator = Capability(discordgo.PermissionAdministrator)

	// CapabilityModerateMembers is required by the moderation commands.
	CapabilityModerateMembers = Capability(discordgo.PermissionKickMembers | discordgo.PermissionBanMembers)
)

// hasCapability reports whether the member holds every permission bit of the
// capability. Administrators hold every capability.
func hasCapability(member *discordgo.Member, c Capability) bool {
	if member == nil {
		return false
	}
	if member.Permissions&discordgo.PermissionAdministrator == discordgo.PermissionAdministrator {
		return true
	}
	return member.Permissions&int64(c) == int64(c)
}

// messageHasCapability is the hasCapability equivalent for prefix commands,
// where member permissions are not carried on the event and have to be
// resolved from state.
func messageHasCapability(a IApp, m *discordgo.Message, c Capability) (bool, error) {
	perms, err := a.Session().State.MessagePermissions(m)
	if err != nil {
		return false, fmt.Errorf("error resolving message permissions: %w", err)
	}
	if perms&discordgo.PermissionAdministrator == discordgo.PermissionAdministrator {
		return true, nil
	}
	return perms&int64(c) == int64(c), nil
}

// isBotOwner reports whether the user is the configured bot owner.
func isBotOwner(userID string) bool {
	return config.OwnerId != "" && userID == config.OwnerId
}
