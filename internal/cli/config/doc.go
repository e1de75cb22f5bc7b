// Package config provides the curvectl profile.
//
// The profile lives at ~/.curvectl/config.yaml unless --config names
// another file. It is loaded through confloader, so CURVECTL_ environment
// variables and a .env file in the working directory override file keys,
// and --set entries override both.
// Shared inputs (cluster, rpc, keypair) are resolved per invocation with
// flags winning over the profile, see Shared.
package config
