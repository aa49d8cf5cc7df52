// Package identity assigns container-scoped tags to arbitrary keys.
//
// A Tagger records, for each key it has seen, a sequential tag. Keys are never
// modified: the tagger keeps a side table from the key's identity to its tag,
// so the same key can be tagged by any number of taggers independently, and
// encoding or comparing the key elsewhere is unaffected.
//
// The identity of a key depends on its kind:
//
//   - pointers, channels, maps and funcs are identified by type and address;
//     what they point at is never inspected, so mutating a map used as a key
//     keeps its identity and two maps with equal contents are distinct keys;
//   - non-empty slices are identified by type, data pointer and length, so
//     re-slicing a backing array to another length yields a different key;
//   - empty slices of one type, nil included, are a single key;
//   - numbers, strings and bools are identified by dynamic type and value, so
//     2, "2" and true differ, every NaN of one type is the same key, and -0
//     equals 0;
//   - arrays and structs are identified by type and the identities of their
//     elements or fields, applying these rules at every depth.
//
// A func value is identified by its code pointer, so every closure created
// from one function literal is the same key.
//
// Pointers to zero-size values, and slices of zero-size elements, may share
// an address and therefore an identity.
//
// A Tagger holds on to each tagged key until it is untagged, so addresses
// recorded in an identity are never reused while the key is tagged.
package identity
