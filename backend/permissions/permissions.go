package permissions

import "lms/backend/models"

// Owned is implemented by records that carry a nullable owner.
type Owned interface {
	IsOwnedBy(userID uint) bool
}

// IsModerator reports membership in the moderator group. Groups must be preloaded.
func IsModerator(user *models.User) bool {
	if user == nil {
		return false
	}
	for _, g := range user.Groups {
		if g.Name == models.ModeratorGroup {
			return true
		}
	}
	return false
}

func IsOwner(user *models.User, record Owned) bool {
	if user == nil || record == nil {
		return false
	}
	return record.IsOwnedBy(user.ID)
}

// CanCreate: any authenticated user except moderators.
func CanCreate(user *models.User) bool {
	return user != nil && !IsModerator(user)
}

// CanView and CanUpdate: the owner or a moderator.
func CanView(user *models.User, record Owned) bool {
	return IsModerator(user) || IsOwner(user, record)
}

func CanUpdate(user *models.User, record Owned) bool {
	return IsModerator(user) || IsOwner(user, record)
}

// CanDelete: the owner, unless they are a moderator.
func CanDelete(user *models.User, record Owned) bool {
	return !IsModerator(user) && IsOwner(user, record)
}
