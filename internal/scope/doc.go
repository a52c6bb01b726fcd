// Package scope defines the authority levels configuration can come from,
// the provenance wrapper attached to every surfaced value, and the
// process-wide write gate that decides whether higher-authority scopes are
// treated as editable.
//
// Authority order is fixed: Managed > Global > Project > Local. Project and
// Local values are always editable; Global and Managed values are editable
// only while the Gate is enabled.
package scope
