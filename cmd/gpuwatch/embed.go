package main

import _ "embed"

// embeddedConfig holds the YAML configuration embedded at build time.
// Packagers may overwrite embed_config.yaml with distribution defaults
// (for example an absolute path to the VRAM helper) before compiling.
//
//go:embed embed_config.yaml
var embeddedConfig []byte
