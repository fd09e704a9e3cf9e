// Package esbuild hands a resolved plan.BuildPlan to github.com/evanw/esbuild.
//
// Nothing here bundles code itself. Options translates the plan into esbuild build
// options: output naming, mode-dependent minification, module fallbacks and one load
// callback per rule whose loader is picked from the rule's handler chain. Engine runs
// single builds, checks the emitted sizes against the performance budget, and hosts
// dev-server sessions. NewModule wires the engine into an Fx application.
//
// Fallbacks are applied unconditionally: an alias or empty module replaces the
// module on every import, not only when normal resolution fails.
//
// Esbuild only serves an output directory that lies inside the served directory.
// When devServer.static points elsewhere, Serve logs a warning and serves the
// output directory instead.
//
// Supported handlers: css-loader, style-loader, postcss-loader, file-loader,
// url-loader, raw-loader, json-loader, babel-loader, ts-loader.
package esbuild
