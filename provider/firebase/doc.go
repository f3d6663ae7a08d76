// Package firebase validates Firebase-issued RS256 ID tokens against the
// provider's published certificates. The signing algorithm is pinned before
// any network call; the certificate set is fetched fresh on every
// validation, by design (caching keys is a production concern this baseline
// does not take on).
package firebase
