package supervisor

// Terminator sends termination requests to processes. Each platform
// provides one implementation, chosen at build time by NewTerminator.
type Terminator interface {
	// Terminate asks a single process to exit
	Terminate(pid int) error
	// TerminateGroup asks the process group led by pid to exit
	TerminateGroup(pid int) error
	// Kill forcefully ends the process group led by pid
	Kill(pid int) error
}
