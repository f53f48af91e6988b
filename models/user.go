package models

// User is the read-only identity record used for display names and avatars.
type User struct {
	UserID     string `dynamodbav:"userId" json:"userId"` // Partition Key
	FullName   string `dynamodbav:"fullName" json:"fullName"`
	ProfilePic string `dynamodbav:"profilePic,omitempty" json:"profilePic,omitempty"`
	EmailID    string `dynamodbav:"emailId,omitempty" json:"-"`
}

// UserSummary is the display identity attached to listed items.
type UserSummary struct {
	UserID     string `json:"userId"`
	FullName   string `json:"fullName"`
	ProfilePic string `json:"profilePic,omitempty"`
}

func (u User) Summary() UserSummary {
	return UserSummary{UserID: u.UserID, FullName: u.FullName, ProfilePic: u.ProfilePic}
}

// Friendship is stored once per direction.
type Friendship struct {
	UserID   string `dynamodbav:"userId" json:"userId"`     // Partition Key
	FriendID string `dynamodbav:"friendId" json:"friendId"` // Sort Key
	Status   string `dynamodbav:"status" json:"status"`
}
