package models

type EEventLogType string

const (
	ProductCreated EEventLogType = "Product created"
	ProductUpdated EEventLogType = "Product updated"
	ProductDeleted EEventLogType = "Product deleted"
	UserUpdated    EEventLogType = "User updated"
	UserDeleted    EEventLogType = "User deleted"
	UserRegistered EEventLogType = "User registered"
)
