// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

const (
	FileNotFoundId Id = iota + 1
	IllegalWorkingDirId
	WorldNotFoundId
	ManifestNotFoundId
	ManifestParseErrorId
	UnsupportedPackKindId
	RegistryCorruptId
	NotAnArchiveId
	UnsafePackNameId
	PackNotFoundId
	AmbiguousIdentifierId
	CrossKindNameCollisionId
	BatchInstallFailedId
	ConfigLoadFailedId
	PermissionDeniedId

	lastId = PermissionDeniedId
)

const manifestDocs HttpLink = "https://learn.microsoft.com/en-us/minecraft/creator/reference/content/addonsreference/packmanifest"

type (
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id    Id          // ID used to lookup the issue
		mdMsg MarkdownMsg // Markdown text that will be rendered
		links []HttpLink  // further reading, may be empty
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) Links() []HttpLink {
	return slices.Clone(i.links)
}

// Render renders the issue with glamour using the given style ("dark",
// "light", "notty", or a path to a style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.links) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.links {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	fileNotFoundIssue = &Issue{
		id: FileNotFoundId,
		mdMsg: `
# File not found!

The pack file or directory you passed does not exist.

## Things you can try:
- Check the spelling of the path
- Use an absolute path, or run addonctl from the directory holding the pack`,
	}

	illegalWorkingDirIssue = &Issue{
		id: IllegalWorkingDirId,
		mdMsg: `
# Not a server or world directory!

addonctl must run either from a dedicated server root (the directory with
the bedrock_server executable and worlds/) or from inside a world directory
(the one with level.dat and db/).

## Things you can try:
- cd into the server root or the world directory
- Skip detection explicitly:
~~~
$ addonctl --force-dirtype server list
$ addonctl --force-dirtype level list
~~~`,
	}

	worldNotFoundIssue = &Issue{
		id: WorldNotFoundId,
		mdMsg: `
# World not found!

The server root has no world with that name under worlds/.

## Things you can try:
- List the worlds the server knows:
~~~
$ ls worlds/
~~~

- Pass the world name explicitly:
~~~
$ addonctl --world "My World" list
~~~

- Set a default in your config:
~~~cue
default_world: "My World"
~~~`,
	}

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# No manifest.json found!

A pack archive or directory must carry manifest.json at its root.

## Things you can try:
- If the archive wraps the pack in an extra folder, repack it so that
  manifest.json sits at the top level
- If the archive holds several packs, rename it to .mcaddon or pass --batch:
~~~
$ addonctl install --batch ./packs/
~~~`,
		links: []HttpLink{manifestDocs},
	}

	manifestParseErrorIssue = &Issue{
		id: ManifestParseErrorId,
		mdMsg: `
# Invalid manifest.json!

The pack descriptor could not be read. Every manifest needs
header.name, header.uuid, header.version and a modules list whose types
are resources, data, script or world_template.

## Things you can try:
- Check the location printed above for the offending field
- Versions are either "1.2.3" or [1, 2, 3]`,
		links: []HttpLink{manifestDocs},
	}

	unsupportedPackKindIssue = &Issue{
		id: UnsupportedPackKindId,
		mdMsg: `
# This pack cannot be installed into a world!

Only behavior packs (data or script modules) and resource packs
(resources modules) can be added to a world. World templates are created
with the game, not installed.`,
		links: []HttpLink{manifestDocs},
	}

	registryCorruptIssue = &Issue{
		id: RegistryCorruptId,
		mdMsg: `
# Active pack list is corrupt!

world_behavior_packs.json or world_resource_packs.json is not a JSON array
of {"pack_id", "version"} objects. addonctl will not overwrite it.

## Things you can try:
- Fix the file by hand, or restore it from a backup
- If the world has no packs you care about, replace it with:
~~~json
[]
~~~`,
	}

	notAnArchiveIssue = &Issue{
		id: NotAnArchiveId,
		mdMsg: `
# Not a pack archive!

.mcpack, .mcaddon and .zip files are zip archives. This file could not be
opened as one; it may be truncated or not a pack at all.`,
	}

	unsafePackNameIssue = &Issue{
		id: UnsafePackNameId,
		mdMsg: `
# Pack name cannot be used as a directory!

Packs are installed into a directory named after header.name. Names that
are empty or contain path separators are refused.

## Things you can try:
- Edit header.name in the pack's manifest.json`,
	}

	packNotFoundIssue = &Issue{
		id: PackNotFoundId,
		mdMsg: `
# No such pack!

No installed pack has that name or uuid. Only packs that are both present on
disk and listed as active are considered installed.

## Things you can try:
~~~
$ addonctl list
~~~`,
	}

	ambiguousIdentifierIssue = &Issue{
		id: AmbiguousIdentifierId,
		mdMsg: `
# More than one pack has that name!

## Things you can try:
- Use the uuid shown by list instead:
~~~
$ addonctl list
$ addonctl remove 4b0c2f1e-57f5-4d3c-9b37-6a5e2a4f7c11
~~~`,
	}

	crossKindNameCollisionIssue = &Issue{
		id: CrossKindNameCollisionId,
		mdMsg: `
# A behavior pack and a resource pack share that name!

Add-ons usually ship one of each under the same name.

## Things you can try:
- Remove both at once:
~~~
$ addonctl remove --all "My Addon"
~~~

- Or remove one of them by uuid`,
	}

	batchInstallFailedIssue = &Issue{
		id: BatchInstallFailedId,
		mdMsg: `
# Some packs were not installed!

The packs listed above failed; every other pack in the archive was
installed. Fix the failing packs and run the same install again: packs that
are already installed are skipped.`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Show where addonctl looks for its config:
~~~
$ addonctl config path
~~~

- Write a fresh default config:
~~~
$ addonctl config init
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

## Common causes:
- The server runs as a different user than addonctl
- The world directory is read-only

## Things you can try:
- Run addonctl as the user that owns the world directory
- Stop the server before changing its packs`,
	}

	issues = map[Id]*Issue{
		fileNotFoundIssue.Id():           fileNotFoundIssue,
		illegalWorkingDirIssue.Id():      illegalWorkingDirIssue,
		worldNotFoundIssue.Id():          worldNotFoundIssue,
		manifestNotFoundIssue.Id():       manifestNotFoundIssue,
		manifestParseErrorIssue.Id():     manifestParseErrorIssue,
		unsupportedPackKindIssue.Id():    unsupportedPackKindIssue,
		registryCorruptIssue.Id():        registryCorruptIssue,
		notAnArchiveIssue.Id():           notAnArchiveIssue,
		unsafePackNameIssue.Id():         unsafePackNameIssue,
		packNotFoundIssue.Id():           packNotFoundIssue,
		ambiguousIdentifierIssue.Id():    ambiguousIdentifierIssue,
		crossKindNameCollisionIssue.Id(): crossKindNameCollisionIssue,
		batchInstallFailedIssue.Id():     batchInstallFailedIssue,
		configLoadFailedIssue.Id():       configLoadFailedIssue,
		permissionDeniedIssue.Id():       permissionDeniedIssue,
	}
)

// Values returns every issue ordered by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for id := FileNotFoundId; id <= lastId; id++ {
		if i, ok := issues[id]; ok {
			out = append(out, i)
		}
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
