// Package backends implements the concrete backend capabilities the engine
// reconciles against on an Arch Linux host: pacman for system packages, an
// AUR helper (paru or yay) for AUR packages, the filesystem for symlinks,
// and systemd for service units.
//
// Every backend call maps to one external command or filesystem operation
// and honors context cancellation through exec.CommandContext. Backends do
// no retrying; the engine treats each call as idempotent-or-terminal.
package backends
