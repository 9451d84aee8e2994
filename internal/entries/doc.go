// Package entries turns raw command line and file input into classified references.
//
// [Collect] flattens positional arguments, a comma separated list and an input file into one ordered,
// de-duplicated list of tokens. [Classify] maps each token onto a [models.Reference]:
//
//   - all digits: a track ID
//   - a URL carrying ?id=<digits> or &id=<digits>: a track ID
//   - "title - artist" (hyphen, en dash or em dash): free text with an artist
//   - anything else: free text with a title only
//
// Classification is total; every token yields a reference.
package entries
