// Package testsupport provides stubs shared by the command package tests.
package testsupport
