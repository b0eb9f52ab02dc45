// Package policy provides optional declarative rules applied before any
// interactive permission request is published – for example to hard-block a
// tool or to approve everything in unattended runs.
package policy
