// Package messenger abstracts the messaging platforms used to relay
// permission prompts to a remote human and to carry the reply back. Concrete
// implementations live in sub-packages (telegram, discord); the memory
// implementation backs tests.
package messenger
