// Package deps implements the provider dependency ledger: reading
// provider records from the store, checking that a dependency is
// registered within a version range, listing the dependents that block a
// provider's removal, and the registration writes that maintain the
// ledger.
//
// Ledger layout under each scope root (see pkg/types for the names):
//
//	Software\Classes\Installer\Dependencies\
//	    <provider key>\
//	        (Default)    = external id
//	        DisplayName  = display name
//	        Version      = "1.2.3.4" or packed QWORD
//	        Attributes   = DWORD (optional)
//	        Dependents\
//	            <dependent provider key>\
//
// Not found is a signal rather than a failure here. CheckDependency turns
// a missing provider or version into a violation; CheckDependents turns a
// missing root, provider or Dependents key into "no dependents".
package deps
