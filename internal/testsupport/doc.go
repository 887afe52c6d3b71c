// Package testsupport holds shared fixtures for bookfetch tests.
package testsupport
