// Package accounts is a user-account extension layer: signup
// validation, activation keys, email change with confirmation, profile
// privacy, and avatar resolution on top of a host owned identity model.
//
// Account lifecycle:
//   - Signups are created together with the user and its profile in one
//     transaction, carrying a random 40-hex activation key. Activation
//     consumes the key exactly once, replacing it with a sentinel and
//     flipping the user's active flag. ActivationStatus reports
//     pending/active/expired as a tagged state so "already activated"
//     can never be read as "expired".
//   - Email changes park the new address in the signup record with a
//     fresh confirmation key, notify both addresses, and only rewrite
//     the primary email once the key comes back.
//
// Collaborators:
//   - Mailer, TemplateRenderer, SiteProvider, and PermissionChecker are
//     narrow interfaces the host provides. Built in defaults cover
//     pongo2 mail templates, a static site, and an in-memory permission
//     registry; adapters/mailgun ships a Mailgun backed Mailer.
//   - Persistence goes through RepositoryManager over Bun. Uniqueness
//     pre-checks are advisory; the embedded migrations install the
//     UNIQUE constraints that hold under concurrent signups.
package accounts
