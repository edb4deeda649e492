// Package session loads the project configuration and tracker shared by the story commands,
// reporting missing or invalid configuration to the user instead of failing.
package session
