// Package catalog turns a directory of images into gallery items.
//
// # Scanning
//
// [Scan] walks a directory tree concurrently and returns every file with a
// known image extension. Hidden files and directories are skipped.
//
// # Probing
//
// [Probe] reads only the image header, never the pixels, to learn the
// width and height. JPEG files are also checked for an EXIF orientation
// tag; images stored rotated by 90 degrees have their dimensions swapped so
// the aspect ratio matches what a viewer displays.
//
// # Loading
//
// [Catalog.Load] combines both: it scans, probes in parallel and caches the
// probe results keyed by path, size and modification time. A file that
// cannot be probed is kept with a square aspect ratio and a warning is
// logged.
//
// # Filtering
//
// [Match] and [Visibility] implement the search box: a fuzzy match on the
// file name decides which items stay visible.
package catalog
