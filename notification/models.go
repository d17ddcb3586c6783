package notification

// Notification is the user-visible part of a push message.
type Notification struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
	Image string `json:"image,omitempty"`
}

// DeviceMessage targets a single device registration token.
type DeviceMessage struct {
	DeviceToken  string            `json:"deviceToken"`
	Notification Notification      `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

// TopicMessage targets every device subscribed to a topic.
type TopicMessage struct {
	Topic        string            `json:"topicName"`
	Notification Notification      `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

// MulticastMessage targets a list of device registration tokens.
type MulticastMessage struct {
	DeviceTokens []string          `json:"deviceTokenList"`
	Notification Notification      `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

// Subscription associates a device token with a topic.
type Subscription struct {
	DeviceToken string `json:"deviceToken"`
	Topic       string `json:"topicName"`
}

// SendOutcome reports the per-token result of a multicast send.
type SendOutcome struct {
	DeviceToken string `json:"deviceToken"`
	MessageID   string `json:"messageId,omitempty"`
	Error       string `json:"error,omitempty"`
}
