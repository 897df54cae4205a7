// Schema of the workspaces index.
package sqlite

// Schema DDL.
const (
	createWorkspaces = `CREATE TABLE workspaces (
    name TEXT PRIMARY KEY,
    file TEXT NOT NULL,
    version INTEGER NOT NULL,
    paths INTEGER NOT NULL,
    files INTEGER NOT NULL,
    refs INTEGER NOT NULL,
    links INTEGER NOT NULL,
    modified_at TEXT NOT NULL
);`

	createWorkspaceFolders = `CREATE TABLE workspace_folders (
    name TEXT NOT NULL,
    folder TEXT NOT NULL,
    PRIMARY KEY (name, folder),
    FOREIGN KEY (name) REFERENCES workspaces(name) ON DELETE CASCADE ON UPDATE CASCADE
);`
)

// Index DDL.
const (
	idxFoldersFolder = `CREATE INDEX idx_workspace_folders_folder ON workspace_folders(folder);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createWorkspaces,
	createWorkspaceFolders,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxFoldersFolder,
}
