// Package locate computes where configuration lives: the project root, the
// ordered, scope-tagged candidate locations for every surface, the git
// worktrees that share a repository, and the directories a watcher must
// observe to notice changes.
//
// The settings order is Global, Project, Local, Managed. Later locations
// override earlier ones in last-wins merges, so organization policy always
// has the final word and local overrides beat checked-in project settings.
package locate
